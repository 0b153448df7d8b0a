package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"restaurant/internal/domain/model"
	"restaurant/internal/infra/cache"
	"restaurant/internal/metrics"
	repo "restaurant/internal/repository"
)

// 集計期間
const (
	RangeDay   = "day"
	RangeWeek  = "week"
	RangeMonth = "month"
	RangeYear  = "year"
)

var hundred = decimal.NewFromInt(100)

// 日付指定が無いときの上限
var farFuture = time.Date(9999, 12, 31, 0, 0, 0, 0, time.UTC)

type ReportUsecase struct {
	reports repo.ReportRepository
	users   repo.UserRepository
	cache   cache.Cache
	ttl     time.Duration
	metrics *metrics.Metrics
	log     *logrus.Logger
	now     func() time.Time
}

func NewReportUsecase(reports repo.ReportRepository, users repo.UserRepository, c cache.Cache, ttl time.Duration, m *metrics.Metrics, log *logrus.Logger) *ReportUsecase {
	if c == nil {
		c = cache.NewNoop()
	}
	return &ReportUsecase{reports: reports, users: users, cache: c, ttl: ttl, metrics: m, log: log, now: time.Now}
}

// 不明な値はmonth扱い
func NormalizeRange(timeRange string) string {
	switch strings.TrimSpace(timeRange) {
	case RangeDay, RangeWeek, RangeMonth, RangeYear:
		return strings.TrimSpace(timeRange)
	}
	return RangeMonth
}

func rangeLength(timeRange string) time.Duration {
	switch timeRange {
	case RangeDay:
		return 24 * time.Hour
	case RangeWeek:
		return 7 * 24 * time.Hour
	case RangeYear:
		return 365 * 24 * time.Hour
	}
	return 30 * 24 * time.Hour
}

type DailySales struct {
	Date       string          `json:"date"`
	TotalSales decimal.Decimal `json:"total_sales"`
	OrderCount int64           `json:"order_count"`
}

type TimeSlot struct {
	Hour       time.Time `json:"hour"`
	OrderCount int64     `json:"order_count"`
}

type TopDish struct {
	DishID int64  `json:"dish_id"`
	Name   string `json:"name"`
	Orders int64  `json:"orders"`
}

type CategorySales struct {
	Category string          `json:"category"`
	Value    decimal.Decimal `json:"value"`
}

type DashboardOutput struct {
	TimeRange        string          `json:"time_range"`
	DailySales       []DailySales    `json:"daily_sales"`
	TotalIncome      decimal.Decimal `json:"total_income"`
	PopularTimeSlots []TimeSlot      `json:"popular_time_slots"`
	TopDishes        []TopDish       `json:"top_dishes"`
	CategorySales    []CategorySales `json:"category_sales"`
	TotalOrders      int64           `json:"total_orders"`
	AvgOrderValue    decimal.Decimal `json:"avg_order_value"`
}

// ダッシュボード。売上・件数は配達済みのみ、平均は期間内の全注文。
func (u *ReportUsecase) Dashboard(ctx context.Context, timeRange string) (DashboardOutput, error) {
	timeRange = NormalizeRange(timeRange)
	var out DashboardOutput
	if u.cached(ctx, "dashboard", timeRange, &out) {
		return out, nil
	}

	to := u.now()
	from := to.Add(-rangeLength(timeRange))
	orders, err := u.reports.OrdersBetween(ctx, from, to, repo.OrderListFilter{})
	if err != nil {
		return DashboardOutput{}, dbError()
	}

	out = DashboardOutput{
		TimeRange:        timeRange,
		DailySales:       []DailySales{},
		TotalIncome:      decimal.Zero,
		PopularTimeSlots: []TimeSlot{},
		TopDishes:        []TopDish{},
		CategorySales:    []CategorySales{},
		AvgOrderValue:    decimal.Zero,
	}

	byDate := map[string]*DailySales{}
	byHour := map[time.Time]*TimeSlot{}
	ids := make([]int64, 0, len(orders))
	sum := decimal.Zero
	for _, o := range orders {
		ids = append(ids, o.ID)
		sum = sum.Add(o.TotalAmount)
		if o.Status != model.OrderStatusDelivered {
			continue
		}
		out.TotalOrders++
		out.TotalIncome = out.TotalIncome.Add(o.TotalAmount)

		created := o.CreatedAt.UTC()
		date := created.Format("2006-01-02")
		ds, ok := byDate[date]
		if !ok {
			ds = &DailySales{Date: date, TotalSales: decimal.Zero}
			byDate[date] = ds
		}
		ds.TotalSales = ds.TotalSales.Add(o.TotalAmount)
		ds.OrderCount++

		hour := created.Truncate(time.Hour)
		ts, ok := byHour[hour]
		if !ok {
			ts = &TimeSlot{Hour: hour}
			byHour[hour] = ts
		}
		ts.OrderCount++
	}
	if len(orders) > 0 {
		out.AvgOrderValue = sum.Div(decimal.NewFromInt(int64(len(orders)))).Round(2)
	}

	for _, ds := range byDate {
		out.DailySales = append(out.DailySales, *ds)
	}
	sort.Slice(out.DailySales, func(i, j int) bool { return out.DailySales[i].Date < out.DailySales[j].Date })

	for _, ts := range byHour {
		out.PopularTimeSlots = append(out.PopularTimeSlots, *ts)
	}
	sort.Slice(out.PopularTimeSlots, func(i, j int) bool {
		a, b := out.PopularTimeSlots[i], out.PopularTimeSlots[j]
		if a.OrderCount != b.OrderCount {
			return a.OrderCount > b.OrderCount
		}
		return a.Hour.Before(b.Hour)
	})
	out.PopularTimeSlots = top(out.PopularTimeSlots, 5)

	rows, err := u.reports.ItemsForOrders(ctx, ids)
	if err != nil {
		return DashboardOutput{}, dbError()
	}
	dishes := map[int64]*TopDish{}
	categories := map[string]*CategorySales{}
	for _, row := range rows {
		d, ok := dishes[row.DishID]
		if !ok {
			d = &TopDish{DishID: row.DishID, Name: row.DishName}
			dishes[row.DishID] = d
		}
		//明細の行数で数える
		d.Orders++

		c, ok := categories[row.CategoryName]
		if !ok {
			c = &CategorySales{Category: row.CategoryName, Value: decimal.Zero}
			categories[row.CategoryName] = c
		}
		c.Value = c.Value.Add(row.Price.Mul(decimal.NewFromInt(row.Quantity)))
	}
	for _, d := range dishes {
		out.TopDishes = append(out.TopDishes, *d)
	}
	sort.Slice(out.TopDishes, func(i, j int) bool {
		a, b := out.TopDishes[i], out.TopDishes[j]
		if a.Orders != b.Orders {
			return a.Orders > b.Orders
		}
		return a.DishID < b.DishID
	})
	out.TopDishes = top(out.TopDishes, 5)

	for _, c := range categories {
		c.Value = c.Value.Round(2)
		out.CategorySales = append(out.CategorySales, *c)
	}
	sort.Slice(out.CategorySales, func(i, j int) bool {
		a, b := out.CategorySales[i], out.CategorySales[j]
		if !a.Value.Equal(b.Value) {
			return a.Value.GreaterThan(b.Value)
		}
		return a.Category < b.Category
	})

	u.store(ctx, "dashboard", timeRange, out)
	return out, nil
}

func top[T any](s []T, n int) []T {
	if len(s) > n {
		return s[:n]
	}
	return s
}

type TrendsOutput struct {
	TimeRange          string          `json:"time_range"`
	TotalIncomeTrend   decimal.Decimal `json:"total_income_trend"`
	TotalOrdersTrend   decimal.Decimal `json:"total_orders_trend"`
	AvgOrderValueTrend decimal.Decimal `json:"avg_order_value_trend"`
}

type windowStats struct {
	income decimal.Decimal
	count  decimal.Decimal
	avg    decimal.Decimal
}

// 今の期間と直前の同じ長さの期間を比べる（%）
func (u *ReportUsecase) SalesTrends(ctx context.Context, timeRange string) (TrendsOutput, error) {
	timeRange = NormalizeRange(timeRange)
	var out TrendsOutput
	if u.cached(ctx, "trends", timeRange, &out) {
		return out, nil
	}

	length := rangeLength(timeRange)
	end := u.now()
	start := end.Add(-length)
	cur, err := u.stats(ctx, start, end)
	if err != nil {
		return TrendsOutput{}, err
	}
	prev, err := u.stats(ctx, start.Add(-length), start)
	if err != nil {
		return TrendsOutput{}, err
	}

	out = TrendsOutput{
		TimeRange:          timeRange,
		TotalIncomeTrend:   Trend(cur.income, prev.income),
		TotalOrdersTrend:   Trend(cur.count, prev.count),
		AvgOrderValueTrend: Trend(cur.avg, prev.avg),
	}
	u.store(ctx, "trends", timeRange, out)
	return out, nil
}

func (u *ReportUsecase) stats(ctx context.Context, from, to time.Time) (windowStats, error) {
	orders, err := u.reports.OrdersBetween(ctx, from, to, repo.OrderListFilter{})
	if err != nil {
		return windowStats{}, dbError()
	}
	s := windowStats{income: decimal.Zero, count: decimal.NewFromInt(int64(len(orders))), avg: decimal.Zero}
	for _, o := range orders {
		s.income = s.income.Add(o.TotalAmount)
	}
	if len(orders) > 0 {
		s.avg = s.income.Div(s.count)
	}
	return s, nil
}

// 前期間が0なら0
func Trend(current, previous decimal.Decimal) decimal.Decimal {
	if previous.IsZero() {
		return decimal.Zero
	}
	return current.Sub(previous).Div(previous).Mul(hundred).Round(2)
}

// 日付で絞る入力。From/Toは日単位で両端を含む。
type ReportDateRange struct {
	From *time.Time
	To   *time.Time
}

func (d ReportDateRange) bounds() (time.Time, time.Time) {
	from := time.Time{}
	to := farFuture
	if d.From != nil {
		from = truncateDay(*d.From)
	}
	if d.To != nil {
		to = truncateDay(*d.To).AddDate(0, 0, 1)
	}
	return from, to
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func (d ReportDateRange) validate() error {
	if d.From != nil && d.To != nil && d.To.Before(*d.From) {
		return NewHTTPError(http.StatusBadRequest, "to_date must be after from_date")
	}
	return nil
}

type SalesReportInput struct {
	ReportDateRange
	OrderType     string
	PaymentMethod string
	Status        string
}

func (u *ReportUsecase) SalesReport(ctx context.Context, in SalesReportInput) ([]model.Order, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	if in.OrderType != "" && !model.OrderType(in.OrderType).Valid() {
		return nil, invalidValue("invalid order_type")
	}
	if in.PaymentMethod != "" && !model.PaymentMethod(in.PaymentMethod).Valid() {
		return nil, invalidValue("invalid payment_method")
	}
	if in.Status != "" && !model.OrderStatus(in.Status).Valid() {
		return nil, invalidValue("invalid status")
	}

	from, to := in.bounds()
	orders, err := u.reports.OrdersBetween(ctx, from, to, repo.OrderListFilter{
		OrderType:     in.OrderType,
		PaymentMethod: in.PaymentMethod,
		Status:        in.Status,
	})
	if err != nil {
		return nil, dbError()
	}
	if orders == nil {
		orders = []model.Order{}
	}
	return orders, nil
}

type ProductSales struct {
	DishID        int64           `json:"dish_id"`
	ProductName   string          `json:"product_name"`
	Category      string          `json:"category"`
	TotalQuantity int64           `json:"total_quantity"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
}

// 料理ごとの数量と金額（単価×数量）
func (u *ReportUsecase) ProductWiseReport(ctx context.Context, in ReportDateRange) ([]ProductSales, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	from, to := in.bounds()
	orders, err := u.reports.OrdersBetween(ctx, from, to, repo.OrderListFilter{})
	if err != nil {
		return nil, dbError()
	}
	ids := make([]int64, 0, len(orders))
	for _, o := range orders {
		ids = append(ids, o.ID)
	}
	rows, err := u.reports.ItemsForOrders(ctx, ids)
	if err != nil {
		return nil, dbError()
	}

	byDish := map[int64]*ProductSales{}
	order := []int64{}
	for _, row := range rows {
		p, ok := byDish[row.DishID]
		if !ok {
			p = &ProductSales{DishID: row.DishID, ProductName: row.DishName, Category: row.CategoryName, TotalAmount: decimal.Zero}
			byDish[row.DishID] = p
			order = append(order, row.DishID)
		}
		p.TotalQuantity += row.Quantity
		p.TotalAmount = p.TotalAmount.Add(row.Price.Mul(decimal.NewFromInt(row.Quantity)))
	}

	out := make([]ProductSales, 0, len(order))
	for _, id := range order {
		p := byDish[id]
		p.TotalAmount = p.TotalAmount.Round(2)
		out = append(out, *p)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].TotalQuantity > out[j].TotalQuantity })
	return out, nil
}

type DriverReportRow struct {
	DeliveryOrderID int64                `json:"delivery_order_id"`
	OrderID         int64                `json:"order_id"`
	InvoiceNumber   string               `json:"invoice_number"`
	CustomerName    string               `json:"customer_name"`
	Address         string               `json:"address"`
	PaymentMethod   model.PaymentMethod  `json:"payment_method"`
	TotalAmount     decimal.Decimal      `json:"total_amount"`
	CashAmount      decimal.Decimal      `json:"cash_amount"`
	BankAmount      decimal.Decimal      `json:"bank_amount"`
	CreditAmount    decimal.Decimal      `json:"credit_amount"`
	DeliveryCharge  decimal.Decimal      `json:"delivery_charge"`
	DriverID        *int64               `json:"delivery_driver_id"`
	DeliveryStatus  model.DeliveryStatus `json:"delivery_status"`
}

func (u *ReportUsecase) DriverReport(ctx context.Context, in ReportDateRange, driverID *int64) ([]DriverReportRow, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	from, to := in.bounds()
	rows, err := u.reports.DriverOrdersBetween(ctx, from, to, driverID)
	if err != nil {
		return nil, dbError()
	}
	out := make([]DriverReportRow, 0, len(rows))
	for _, r := range rows {
		o := r.Order
		out = append(out, DriverReportRow{
			DeliveryOrderID: r.DeliveryOrderID,
			OrderID:         o.ID,
			InvoiceNumber:   o.InvoiceNumber,
			CustomerName:    o.CustomerName,
			Address:         o.Address,
			PaymentMethod:   o.PaymentMethod,
			TotalAmount:     o.TotalAmount,
			CashAmount:      o.CashAmount,
			BankAmount:      o.BankAmount,
			CreditAmount:    o.CreditAmount,
			DeliveryCharge:  o.DeliveryCharge,
			DriverID:        r.DriverID,
			DeliveryStatus:  r.DeliveryStatus,
		})
	}
	return out, nil
}

// staff・adminが受けた注文。userID指定時はその1人分。
func (u *ReportUsecase) StaffOrderReport(ctx context.Context, in ReportDateRange, userID *int64) ([]model.Order, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	from, to := in.bounds()

	if userID != nil {
		user, err := u.users.FindByID(ctx, *userID)
		if err != nil {
			return nil, dbError()
		}
		if user == nil || !isStaff(user.Role) {
			return nil, notFound("staff user")
		}
		orders, err := u.reports.OrdersBetween(ctx, from, to, repo.OrderListFilter{UserID: userID})
		if err != nil {
			return nil, dbError()
		}
		if orders == nil {
			orders = []model.Order{}
		}
		return orders, nil
	}

	users, err := u.users.List(ctx, nil)
	if err != nil {
		return nil, dbError()
	}
	staff := map[int64]bool{}
	for _, us := range users {
		if isStaff(us.Role) {
			staff[us.ID] = true
		}
	}
	orders, err := u.reports.OrdersBetween(ctx, from, to, repo.OrderListFilter{})
	if err != nil {
		return nil, dbError()
	}
	out := []model.Order{}
	for _, o := range orders {
		if staff[o.UserID] {
			out = append(out, o)
		}
	}
	return out, nil
}

func isStaff(r model.Role) bool {
	return r == model.RoleStaff || r == model.RoleAdmin
}

// キャッシュ失敗は集計を止めない
func (u *ReportUsecase) cached(ctx context.Context, op, key string, dst interface{}) bool {
	v, err := u.cache.Get(ctx, u.cache.GenerateKey(op, key))
	if err != nil {
		u.logCacheError(op, err)
		u.metrics.ReportCache(false)
		return false
	}
	if v == "" {
		u.metrics.ReportCache(false)
		return false
	}
	if err := json.Unmarshal([]byte(v), dst); err != nil {
		u.logCacheError(op, err)
		u.metrics.ReportCache(false)
		return false
	}
	u.metrics.ReportCache(true)
	return true
}

func (u *ReportUsecase) store(ctx context.Context, op, key string, v interface{}) {
	b, err := json.Marshal(v)
	if err != nil {
		u.logCacheError(op, err)
		return
	}
	if err := u.cache.Set(ctx, u.cache.GenerateKey(op, key), string(b), u.ttl); err != nil {
		u.logCacheError(op, err)
	}
}

func (u *ReportUsecase) logCacheError(op string, err error) {
	if u.log == nil || errors.Is(err, context.Canceled) {
		return
	}
	u.log.WithFields(logrus.Fields{"op": op, "error": err.Error()}).Warn("report cache failed")
}
