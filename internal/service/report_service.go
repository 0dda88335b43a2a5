package service

import (
	"context"
	"fmt"
	"sort"

	"burgerpos/internal/dto"
	"burgerpos/internal/model"

	"github.com/shopspring/decimal"
)

// ReportService aggregates the ledger for the back office. Read-only.
type ReportService interface {
	Summary(ctx context.Context, period string) dto.ReportResponse
	ShiftHistory(ctx context.Context) dto.ShiftHistoryResponse
}

type reportService struct {
	sales  SaleService
	shifts ShiftService
}

func NewReportService(sales SaleService, shifts ShiftService) ReportService {
	return &reportService{sales: sales, shifts: shifts}
}

const topProductsLimit = 10

func (s *reportService) Summary(ctx context.Context, period string) dto.ReportResponse {
	if period == "" {
		period = "today"
	}
	sales := s.sales.List(ctx, dto.SaleFilter{Period: period})
	agg := aggregate(sales)

	resp := dto.ReportResponse{
		Period:           period,
		Revenue:          agg.total,
		SalesCount:       agg.count,
		ItemsSold:        agg.items,
		AverageTicket:    decimal.Zero,
		Discounts:        decimal.Zero,
		PaymentBreakdown: agg.breakdown,
		SalesByHour:      salesByHour(sales),
		TopProducts:      topProducts(sales, topProductsLimit),
	}
	if agg.count > 0 {
		resp.AverageTicket = model.RoundMoney(agg.total.Div(decimal.NewFromInt(int64(agg.count))))
	}
	for _, sale := range sales {
		resp.Discounts = resp.Discounts.Add(sale.Discount)
	}
	for _, sh := range s.shifts.List(ctx) {
		if !sh.IsActive {
			resp.ClosedShifts++
		}
	}
	return resp
}

// ShiftHistory lists every shift newest first with grand totals over closed shifts.
func (s *reportService) ShiftHistory(ctx context.Context) dto.ShiftHistoryResponse {
	shifts := s.shifts.List(ctx)
	resp := dto.ShiftHistoryResponse{Shifts: shifts, TotalSales: decimal.Zero}
	for _, sh := range shifts {
		if sh.IsActive {
			continue
		}
		resp.TotalSales = resp.TotalSales.Add(sh.TotalSales)
		resp.TotalItems += sh.TotalItems
	}
	return resp
}

// salesByHour buckets by local hour of day; empty hours are omitted.
func salesByHour(sales []model.Sale) []dto.HourlySales {
	var buckets [24]dto.HourlySales
	for h := range buckets {
		buckets[h] = dto.HourlySales{Hour: fmt.Sprintf("%02d:00", h), Revenue: decimal.Zero}
	}
	for _, sale := range sales {
		b := &buckets[sale.CreatedAt.Hour()]
		b.Sales++
		b.Revenue = b.Revenue.Add(sale.Total)
	}
	out := make([]dto.HourlySales, 0)
	for _, b := range buckets {
		if b.Sales > 0 {
			out = append(out, b)
		}
	}
	return out
}

// topProducts ranks by gross revenue (price × quantity, before discount).
func topProducts(sales []model.Sale, limit int) []dto.ProductSales {
	byName := make(map[string]*dto.ProductSales)
	var order []string
	for _, sale := range sales {
		for _, it := range sale.Items {
			ps, ok := byName[it.ProductName]
			if !ok {
				ps = &dto.ProductSales{Name: it.ProductName, Revenue: decimal.Zero}
				byName[it.ProductName] = ps
				order = append(order, it.ProductName)
			}
			ps.Quantity += it.Quantity
			ps.Revenue = ps.Revenue.Add(it.Price.Mul(decimal.NewFromInt(int64(it.Quantity))))
		}
	}
	out := make([]dto.ProductSales, 0, len(order))
	for _, name := range order {
		out = append(out, *byName[name])
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Revenue.GreaterThan(out[j].Revenue) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}
