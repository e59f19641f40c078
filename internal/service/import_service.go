package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/vikas186/cts-optimizer-backend/internal/domain"
	"github.com/vikas186/cts-optimizer-backend/internal/events"
	"github.com/vikas186/cts-optimizer-backend/internal/ingest"
	"github.com/vikas186/cts-optimizer-backend/internal/repository"
	"github.com/vikas186/cts-optimizer-backend/internal/store"
)

// 导入阶段（写在 ImportError.Step 中）
const (
	StepReplaceExisting       = "replace_existing"
	StepEnsureCustomersRoutes = "ensure_customers_routes"
)

// lastImportTTL 最近一次导入摘要保留时长
const lastImportTTL = 30 * 24 * time.Hour

// ImportError 阶段错误带 step，sheet 写入错误带 sheet
type ImportError struct {
	Sheet   string `json:"sheet,omitempty"`
	Step    string `json:"step,omitempty"`
	Message string `json:"message"`
}

// ImportOutcome 导入事务的结果
type ImportOutcome struct {
	Imported domain.SheetCounts
	Errors   []ImportError
}

// ImportResult 返回给调用方的导入摘要
type ImportResult struct {
	Success      bool               `json:"success"`
	Imported     domain.SheetCounts `json:"imported"`
	ParsedCounts domain.SheetCounts `json:"parsed_counts"`
	Errors       []ImportError      `json:"errors,omitempty"`
	ImportedAt   time.Time          `json:"imported_at"`
}

// ImportService 租户数据整体替换导入
type ImportService struct {
	facts      repository.FactRepository
	tenantData repository.TenantDataRepository
	resolver   *Resolver
	kv         store.KV
	lock       tenantLock
	events     events.Publisher
	logger     *zap.Logger
	now        func() time.Time
}

// NewImportService 创建导入服务
func NewImportService(d Deps) *ImportService {
	d = d.withDefaults()
	return &ImportService{
		facts:      d.Facts,
		tenantData: d.TenantData,
		resolver:   NewResolver(d.Dimensions, d.Logger),
		kv:         d.KV,
		lock:       d.lock(),
		events:     d.Events,
		logger:     d.Logger,
		now:        time.Now,
	}
}

// UploadWorkbookRequest 上传工作簿请求
type UploadWorkbookRequest struct {
	OrganizationID string
	FileName       string
	Body           io.Reader
}

// UploadWorkbook 解析工作簿并整体替换租户事实数据
// 工作簿无法解析时返回 ErrInvalidWorkbook，不修改任何数据
func (s *ImportService) UploadWorkbook(ctx context.Context, req UploadWorkbookRequest) (*ImportResult, error) {
	orgID := strings.TrimSpace(req.OrganizationID)
	if orgID == "" {
		return nil, ErrTenantRequired
	}
	if req.Body == nil {
		return nil, fmt.Errorf("%w: file is required", ErrInvalidWorkbook)
	}

	batch, err := ingest.ParseWorkbook(req.Body, orgID)
	if err != nil {
		s.logger.Warn("Failed to parse workbook",
			zap.String("organization_id", orgID),
			zap.String("file_name", req.FileName),
			zap.Error(err),
		)
		return nil, fmt.Errorf("%w: %v", ErrInvalidWorkbook, err)
	}
	s.logger.Info("Parsed workbook",
		zap.String("organization_id", orgID),
		zap.String("file_name", req.FileName),
		zap.Int("warehouse_costs", len(batch.WarehouseCosts)),
		zap.Int("transport_costs", len(batch.TransportCosts)),
		zap.Int("orders", len(batch.Orders)),
		zap.Int("rejected_warehouse_costs", batch.Rejected.WarehouseCosts),
		zap.Int("rejected_transport_costs", batch.Rejected.TransportCosts),
		zap.Int("rejected_orders", batch.Rejected.Orders),
	)

	var outcome *ImportOutcome
	err = s.lock.run(ctx, orgID, func() error {
		outcome = s.ImportBatch(ctx, orgID, batch)
		return nil
	})
	if err != nil {
		return nil, err
	}

	result := &ImportResult{
		Success:      len(outcome.Errors) == 0,
		Imported:     outcome.Imported,
		ParsedCounts: batch.Counts(),
		Errors:       outcome.Errors,
		ImportedAt:   s.now().UTC(),
	}
	s.saveLastImport(ctx, orgID, result)
	s.publish(ctx, events.New(events.TypeImportCompleted, orgID, map[string]any{
		"success":       result.Success,
		"imported":      result.Imported,
		"parsed_counts": result.ParsedCounts,
		"errors":        len(result.Errors),
	}))
	return result, nil
}

// ImportBatch 三阶段导入：
//  1. 删除租户 orders / transport_costs / warehouse_costs（一个事务），失败则中止
//  2. 补齐引用的 customers / routes，失败则中止
//  3. 三个 sheet 各自批量写入，互不影响
//
// 阶段错误与 sheet 错误作为数据放在 Errors 中返回
func (s *ImportService) ImportBatch(ctx context.Context, orgID string, b *ingest.Batch) *ImportOutcome {
	outcome := &ImportOutcome{}

	deleted, err := s.facts.DeleteFacts(ctx, orgID)
	if err != nil {
		s.logger.Error("Failed to replace existing data", zap.String("organization_id", orgID), zap.Error(err))
		outcome.Errors = append(outcome.Errors, ImportError{Step: StepReplaceExisting, Message: errorMessage(err)})
		return outcome
	}
	s.logger.Debug("Deleted existing facts",
		zap.String("organization_id", orgID),
		zap.Int("orders", deleted.Orders),
		zap.Int("transport_costs", deleted.TransportCosts),
		zap.Int("warehouse_costs", deleted.WarehouseCosts),
	)

	if _, err := s.resolver.Resolve(ctx, orgID, b); err != nil {
		s.logger.Error("Failed to ensure customers and routes", zap.String("organization_id", orgID), zap.Error(err))
		outcome.Errors = append(outcome.Errors, ImportError{Step: StepEnsureCustomersRoutes, Message: errorMessage(err)})
		return outcome
	}

	s.insertSheet(ctx, orgID, domain.SheetWarehouseCosts, len(b.WarehouseCosts), outcome, &outcome.Imported.WarehouseCosts, func() (int, error) {
		return s.facts.InsertWarehouseCosts(ctx, orgID, b.WarehouseCosts)
	})
	s.insertSheet(ctx, orgID, domain.SheetTransportCosts, len(b.TransportCosts), outcome, &outcome.Imported.TransportCosts, func() (int, error) {
		return s.facts.InsertTransportCosts(ctx, orgID, b.TransportCosts)
	})
	s.insertSheet(ctx, orgID, domain.SheetOrders, len(b.Orders), outcome, &outcome.Imported.Orders, func() (int, error) {
		return s.facts.InsertOrders(ctx, orgID, b.Orders)
	})
	return outcome
}

func (s *ImportService) insertSheet(ctx context.Context, orgID, sheet string, rows int, outcome *ImportOutcome, imported *int, insert func() (int, error)) {
	if rows == 0 {
		return
	}
	n, err := insert()
	if err != nil {
		s.logger.Error("Failed to import sheet",
			zap.String("organization_id", orgID),
			zap.String("sheet", sheet),
			zap.Int("rows", rows),
			zap.Error(err),
		)
		outcome.Errors = append(outcome.Errors, ImportError{Sheet: sheet, Message: errorMessage(err)})
		return
	}
	*imported = n
}

// LastImport 读取最近一次导入摘要；没有记录时返回 repository.ErrNotFound
func (s *ImportService) LastImport(ctx context.Context, orgID string) (*ImportResult, error) {
	if orgID == "" {
		return nil, ErrTenantRequired
	}
	raw, err := s.kv.Get(ctx, lastImportKey(orgID))
	if err != nil {
		if errors.Is(err, store.ErrMiss) {
			return nil, fmt.Errorf("last import: %w", repository.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to read last import: %w", err)
	}
	var result ImportResult
	if err := json.Unmarshal([]byte(raw), &result); err != nil {
		return nil, fmt.Errorf("failed to decode last import: %w", err)
	}
	return &result, nil
}

// DeleteAllData 删除租户全部数据（结果、事实、维度）
func (s *ImportService) DeleteAllData(ctx context.Context, orgID string) (*domain.DeletedCounts, error) {
	if orgID == "" {
		return nil, ErrTenantRequired
	}
	var counts domain.DeletedCounts
	err := s.lock.run(ctx, orgID, func() error {
		var err error
		counts, err = s.tenantData.DeleteAll(ctx, orgID)
		return err
	})
	if err != nil {
		if errors.Is(err, ErrRunInProgress) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to delete tenant data: %w", err)
	}
	if err := s.kv.Del(ctx, lastImportKey(orgID)); err != nil {
		s.logger.Warn("Failed to clear last import", zap.String("organization_id", orgID), zap.Error(err))
	}
	s.logger.Info("Deleted tenant data", zap.String("organization_id", orgID), zap.Any("deleted", counts))
	s.publish(ctx, events.New(events.TypeTenantDataDeleted, orgID, map[string]any{"deleted": counts}))
	return &counts, nil
}

// TemplateWorkbook 导入模板（.xlsx）
func (s *ImportService) TemplateWorkbook() ([]byte, error) {
	data, err := ingest.GenerateImportTemplate()
	if err != nil {
		return nil, fmt.Errorf("failed to generate import template: %w", err)
	}
	return data, nil
}

func (s *ImportService) saveLastImport(ctx context.Context, orgID string, result *ImportResult) {
	data, err := json.Marshal(result)
	if err != nil {
		s.logger.Warn("Failed to encode last import", zap.String("organization_id", orgID), zap.Error(err))
		return
	}
	if err := s.kv.Set(ctx, lastImportKey(orgID), string(data), lastImportTTL); err != nil {
		s.logger.Warn("Failed to save last import", zap.String("organization_id", orgID), zap.Error(err))
	}
}

func (s *ImportService) publish(ctx context.Context, e events.Event) {
	publishEvent(ctx, s.events, s.logger, e)
}

func lastImportKey(orgID string) string {
	return "cts:last_import:" + orgID
}

// errorMessage 数据库错误只取驱动给出的消息
func errorMessage(err error) string {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Message
	}
	return err.Error()
}

// publishEvent 发布失败只记录日志
func publishEvent(ctx context.Context, p events.Publisher, logger *zap.Logger, e events.Event) {
	if err := p.Publish(ctx, e); err != nil {
		logger.Warn("Failed to publish event",
			zap.String("type", e.Type),
			zap.String("organization_id", e.OrganizationID),
			zap.Error(err),
		)
	}
}
