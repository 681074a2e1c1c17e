package entity

// servicesOffered is the number of courier products Welzyne sells
// (standard, express and refrigerated delivery).
const servicesOffered int64 = 3

// Metrics carries the counters rendered on top of the admin dashboard.
type Metrics struct {
	TotalUsers   int64 `json:"totalUsers"`
	TotalOrders  int64 `json:"totalOrders"`
	ActiveOrders int64 `json:"activeOrders"`
	Services     int64 `json:"services"`
}

// NewMetrics fills the static counters of a Metrics snapshot.
func NewMetrics(totalUsers, totalOrders, activeOrders int64) Metrics {
	return Metrics{
		TotalUsers:   totalUsers,
		TotalOrders:  totalOrders,
		ActiveOrders: activeOrders,
		Services:     servicesOffered,
	}
}
