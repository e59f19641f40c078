package service

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/vikas186/cts-optimizer-backend/internal/domain"
)

// OrderRequest 手工新建/修改订单
// 修改时 nil 字段保持原值；order_id 不可修改
type OrderRequest struct {
	OrganizationID string   `json:"-"`
	OrderID        string   `json:"order_id"`
	CustomerID     *string  `json:"customer_id"`
	RouteID        *string  `json:"route_id"`
	SKU            *string  `json:"sku"`
	Quantity       *int64   `json:"quantity"`
	Revenue        *float64 `json:"revenue"`
	WeightKg       *float64 `json:"weight_kg"`
	VolumeM3       *float64 `json:"volume_m3"`
	Lines          *int64   `json:"lines"`
	Pallets        *int64   `json:"pallets"`
	OrderDate      *string  `json:"order_date"` // YYYY-MM-DD，空串表示清空
}

// apply 校验并把请求字段写入 o
func (req *OrderRequest) apply(o *domain.Order) error {
	if req.CustomerID != nil {
		o.CustomerID = strings.TrimSpace(*req.CustomerID)
	}
	if req.RouteID != nil {
		o.RouteID = strings.TrimSpace(*req.RouteID)
	}
	if o.CustomerID == "" {
		return fmt.Errorf("%w: customer_id is required", ErrInvalidInput)
	}
	if o.RouteID == "" {
		return fmt.Errorf("%w: route_id is required", ErrInvalidInput)
	}
	if req.SKU != nil {
		sku := strings.TrimSpace(*req.SKU)
		o.SKU = sql.NullString{String: sku, Valid: sku != ""}
	}

	ints := []struct {
		field string
		v     *int64
		dst   *sql.NullInt64
	}{
		{"quantity", req.Quantity, &o.Quantity},
		{"lines", req.Lines, &o.Lines},
		{"pallets", req.Pallets, &o.Pallets},
	}
	for _, f := range ints {
		if f.v == nil {
			continue
		}
		if *f.v < 0 {
			return fmt.Errorf("%w: %s must be a non-negative number", ErrInvalidInput, f.field)
		}
		*f.dst = sql.NullInt64{Int64: *f.v, Valid: true}
	}

	floats := []struct {
		field string
		v     *float64
		dst   *sql.NullFloat64
	}{
		{"revenue", req.Revenue, &o.Revenue},
		{"weight_kg", req.WeightKg, &o.WeightKg},
		{"volume_m3", req.VolumeM3, &o.VolumeM3},
	}
	for _, f := range floats {
		if f.v == nil {
			continue
		}
		if err := checkAmount(f.field, *f.v); err != nil {
			return err
		}
		*f.dst = sql.NullFloat64{Float64: *f.v, Valid: true}
	}

	if req.OrderDate != nil {
		raw := strings.TrimSpace(*req.OrderDate)
		if raw == "" {
			o.OrderDate = sql.NullTime{}
		} else {
			day, err := time.Parse(domain.DateLayout, raw)
			if err != nil {
				return fmt.Errorf("%w: order_date must be YYYY-MM-DD", ErrInvalidInput)
			}
			o.OrderDate = sql.NullTime{Time: day, Valid: true}
		}
	}
	return nil
}

// CreateOrder 新建订单；引用的客户/线路不存在时自动创建（与导入一致）
func (s *QueryService) CreateOrder(ctx context.Context, req OrderRequest) (*domain.Order, error) {
	if req.OrganizationID == "" {
		return nil, ErrTenantRequired
	}
	o := &domain.Order{OrganizationID: req.OrganizationID, OrderID: strings.TrimSpace(req.OrderID)}
	if o.OrderID == "" {
		return nil, fmt.Errorf("%w: order_id is required", ErrInvalidInput)
	}
	if err := req.apply(o); err != nil {
		return nil, err
	}

	err := s.lock.run(ctx, o.OrganizationID, func() error {
		if err := s.ensureRefs(ctx, o); err != nil {
			return err
		}
		return s.facts.CreateOrder(ctx, o)
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("Created order", zap.String("organization_id", o.OrganizationID), zap.String("order_id", o.OrderID))
	return o, nil
}

// UpdateOrder 部分更新；已有的计算结果保留到下一次计算
func (s *QueryService) UpdateOrder(ctx context.Context, req OrderRequest) (*domain.Order, error) {
	if req.OrganizationID == "" {
		return nil, ErrTenantRequired
	}
	if req.OrderID == "" {
		return nil, fmt.Errorf("%w: order_id is required", ErrInvalidInput)
	}

	var o *domain.Order
	err := s.lock.run(ctx, req.OrganizationID, func() error {
		cur, err := s.facts.GetOrder(ctx, req.OrganizationID, req.OrderID)
		if err != nil {
			return err
		}
		if err := req.apply(cur); err != nil {
			return err
		}
		if err := s.ensureRefs(ctx, cur); err != nil {
			return err
		}
		if err := s.facts.UpdateOrder(ctx, cur); err != nil {
			return err
		}
		o = cur
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("Updated order", zap.String("organization_id", o.OrganizationID), zap.String("order_id", o.OrderID))
	return o, nil
}

// DeleteOrder 删除订单及其计算结果
func (s *QueryService) DeleteOrder(ctx context.Context, orgID, orderID string) error {
	if orgID == "" {
		return ErrTenantRequired
	}
	err := s.lock.run(ctx, orgID, func() error {
		return s.facts.DeleteOrder(ctx, orgID, orderID)
	})
	if err != nil {
		return err
	}
	s.logger.Info("Deleted order", zap.String("organization_id", orgID), zap.String("order_id", orderID))
	return nil
}

func (s *QueryService) ensureRefs(ctx context.Context, o *domain.Order) error {
	if _, err := s.dims.EnsureCustomers(ctx, o.OrganizationID, []string{o.CustomerID}); err != nil {
		return err
	}
	if _, err := s.dims.EnsureRoutes(ctx, o.OrganizationID, []string{o.RouteID}); err != nil {
		return err
	}
	return nil
}
