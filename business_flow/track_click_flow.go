package businessflow

import (
	"context"

	"github.com/biotap/biotap/app/services"
	"github.com/biotap/biotap/models"
	"github.com/biotap/biotap/repository"
	"github.com/biotap/biotap/utils"
)

// TrackClickFlow records one visit-and-redirect through a tracked link:
// it enriches the raw request metadata, appends a click event to the
// ledger, and bumps the link's denormalized click counter.
// Enrichment failures degrade to unknown/absent fields and never fail
// the tracking itself.
type TrackClickFlow interface {
	TrackClick(ctx context.Context, linkID uint, ip, userAgent, referer *string) (*models.ClickEvent, error)
}

type TrackClickFlowImpl struct {
	linkRepo   repository.LinkRepository
	clickRepo  repository.ClickEventRepository
	enrichment services.EnrichmentService
	tx         repository.TxRunner
}

func NewTrackClickFlow(
	linkRepo repository.LinkRepository,
	clickRepo repository.ClickEventRepository,
	enrichment services.EnrichmentService,
	tx repository.TxRunner,
) TrackClickFlow {
	return &TrackClickFlowImpl{
		linkRepo:   linkRepo,
		clickRepo:  clickRepo,
		enrichment: enrichment,
		tx:         tx,
	}
}

func (f *TrackClickFlowImpl) TrackClick(ctx context.Context, linkID uint, ip, userAgent, referer *string) (*models.ClickEvent, error) {
	link, err := f.linkRepo.ByID(ctx, linkID)
	if err != nil {
		return nil, NewBusinessError("LINK_LOOKUP_FAILED", "Failed to lookup link", err)
	}
	if link == nil {
		return nil, ErrLinkNotFound
	}
	if !utils.IsTrue(link.IsActive) {
		return nil, ErrLinkInactive
	}

	meta := f.enrichment.Enrich(ctx, userAgent, ip)

	event := &models.ClickEvent{
		LinkID:     linkID,
		IPAddress:  ip,
		UserAgent:  userAgent,
		Referer:    referer,
		Country:    meta.Country,
		DeviceType: utils.ToPtr(meta.DeviceType),
		Browser:    utils.ToPtr(meta.Browser),
		ClickedAt:  utils.UTCNow(),
	}

	// One unit of work: ledger append and counter bump land together
	err = f.tx.InTransaction(ctx, func(txCtx context.Context) error {
		if err := f.clickRepo.Save(txCtx, event); err != nil {
			return err
		}
		return f.linkRepo.IncrementClickCount(txCtx, linkID)
	})
	if err != nil {
		return nil, NewBusinessError("CLICK_TRACK_FAILED", "Failed to track click", err)
	}

	return event, nil
}
