package audit

import (
	"context"
	"fmt"
	"time"
)

const (
	defaultPageSize = 20
	maxPageSize     = 50
)

// TimelineFilters narrows the audit trail query.
type TimelineFilters struct {
	TenantID        string
	ActorUserID     string
	Entity          string
	TransactionType TransactionType
	From            time.Time
	To              time.Time
	Page            int
	PageSize        int
}

// PagingInfo describes the page a Timeline call returned.
type PagingInfo struct {
	Page     int  `json:"page"`
	PageSize int  `json:"page_size"`
	HasNext  bool `json:"has_next"`
	PrevPage int  `json:"prev_page,omitempty"`
	NextPage int  `json:"next_page,omitempty"`
}

// Result bundles timeline rows with paging information.
type Result struct {
	Rows   []Record
	Paging PagingInfo
}

// Service coordinates audit trail reads.
type Service struct {
	repo Repository
}

// NewService builds a read service over the repository.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Timeline returns one page of audit records, newest first. It fetches one
// row beyond the page to detect whether a next page exists.
func (s *Service) Timeline(ctx context.Context, filters TimelineFilters) (Result, error) {
	if s.repo == nil {
		return Result{}, fmt.Errorf("audit: repository not configured")
	}
	pageSize := filters.PageSize
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	page := filters.Page
	if page <= 0 {
		page = 1
	}

	rows, err := s.repo.List(ctx, Query{
		TenantID:        filters.TenantID,
		ActorUserID:     filters.ActorUserID,
		Entity:          filters.Entity,
		TransactionType: filters.TransactionType,
		From:            filters.From,
		To:              filters.To,
		Offset:          (page - 1) * pageSize,
		Limit:           pageSize + 1,
	})
	if err != nil {
		return Result{}, err
	}

	hasNext := len(rows) > pageSize
	if hasNext {
		rows = rows[:pageSize]
	}
	paging := PagingInfo{Page: page, PageSize: pageSize, HasNext: hasNext}
	if page > 1 {
		paging.PrevPage = page - 1
	}
	if hasNext {
		paging.NextPage = page + 1
	}
	return Result{Rows: rows, Paging: paging}, nil
}

// Export returns the full filtered timeline without paging.
func (s *Service) Export(ctx context.Context, filters TimelineFilters) ([]Record, error) {
	if s.repo == nil {
		return nil, fmt.Errorf("audit: repository not configured")
	}
	return s.repo.List(ctx, Query{
		TenantID:        filters.TenantID,
		ActorUserID:     filters.ActorUserID,
		Entity:          filters.Entity,
		TransactionType: filters.TransactionType,
		From:            filters.From,
		To:              filters.To,
	})
}
