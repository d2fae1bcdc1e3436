package response

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	orderResponse "github.com/Alturino/storefront/order/response"
)

type TopProduct struct {
	ProductID uuid.UUID       `json:"productId"`
	Name      string          `json:"name"`
	TotalSold int64           `json:"totalSold"`
	Revenue   decimal.Decimal `json:"revenue"`
}

type Dashboard struct {
	TotalOrders   int64                 `json:"totalOrders"`
	TotalUsers    int64                 `json:"totalUsers"`
	TotalProducts int64                 `json:"totalProducts"`
	SalesAmount   decimal.Decimal       `json:"salesAmount"`
	TopProducts   []TopProduct          `json:"topProducts"`
	RecentOrders  []orderResponse.Order `json:"recentOrders"`
	ChartLabels   []string              `json:"chartLabels"`
	ChartData     []decimal.Decimal     `json:"chartData"`
	CatLabels     []string              `json:"catLabels"`
	CatData       []int64               `json:"catData"`
}
