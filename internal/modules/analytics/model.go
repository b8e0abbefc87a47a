package analytics

// Summary is the aggregate view of the catalog and order book.
type Summary struct {
	TotalProducts  int64            `json:"totalProducts"`
	TotalOrders    int64            `json:"totalOrders"`
	TotalRevenue   float64          `json:"totalRevenue"`
	LowStockCount  int64            `json:"lowStockCount"`
	CategoryCounts map[string]int64 `json:"categoryCounts"`
	PriceSegments  []PriceSegment   `json:"priceSegments"`
	TopProducts    []TopProduct     `json:"topProducts"`
	MonthlyRevenue []MonthlyRevenue `json:"monthlyRevenue"`
}

type PriceSegment struct {
	Range string `json:"range"`
	Count int64  `json:"count"`
}

type TopProduct struct {
	ProductName  string `json:"productName"`
	QuantitySold int64  `json:"quantitySold"`
}

// MonthlyRevenue is revenue for one yyyy-MM month.
type MonthlyRevenue struct {
	Month   string  `json:"month"`
	Revenue float64 `json:"revenue"`
}

// DailySales is revenue for one day.
type DailySales struct {
	Day     string  `json:"day"`
	Revenue float64 `json:"revenue"`
}

// TrendSource says which series a trend was built from.
type TrendSource string

const (
	TrendNone    TrendSource = "none"
	TrendDaily   TrendSource = "daily"
	TrendMonthly TrendSource = "monthly"
)

// Point is one bar of the sales trend.
type Point struct {
	Label string
	Value float64
}

// Dashboard combines the summary with the sales trend.
type Dashboard struct {
	Summary     Summary
	Trend       []Point
	TrendSource TrendSource
	// DailyErr is set when the daily series could not be loaded.
	DailyErr error
}

var ExportFormats = []string{"csv", "excel", "pdf"}
