package keeper

import (
	"math/big"
	"sync"

	"cosmossdk.io/math"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// DEXMetrics holds all Prometheus metrics for the DEX module
type DEXMetrics struct {
	// Trade metrics
	TradesTotal        *prometheus.CounterVec
	TradeVolume        *prometheus.CounterVec
	TakerFeesCollected *prometheus.CounterVec

	// Liquidity metrics
	PoolsCreated     prometheus.Counter
	LiquidityAdded   *prometheus.CounterVec
	LiquidityRemoved *prometheus.CounterVec

	// Distribution metrics
	FeesDistributed      *prometheus.CounterVec
	ProviderPayouts      prometheus.Counter
	DistributionFailures *prometheus.CounterVec
	DistributionDuration prometheus.Histogram
}

var (
	dexMetricsOnce sync.Once
	dexMetrics     *DEXMetrics
)

// NewDEXMetrics creates and registers DEX metrics (singleton pattern)
func NewDEXMetrics() *DEXMetrics {
	dexMetricsOnce.Do(func() {
		dexMetrics = &DEXMetrics{
			TradesTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Namespace: "pawdex",
					Subsystem: "dex",
					Name:      "trades_total",
					Help:      "Total number of trades by market, side and outcome",
				},
				[]string{"market", "side", "status"},
			),
			TradeVolume: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Namespace: "pawdex",
					Subsystem: "dex",
					Name:      "trade_volume_total",
					Help:      "Gross trade input in base units of the spent asset",
				},
				[]string{"market", "asset"},
			),
			TakerFeesCollected: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Namespace: "pawdex",
					Subsystem: "dex",
					Name:      "taker_fees_collected_total",
					Help:      "Taker fees withheld for liquidity providers",
				},
				[]string{"market", "asset"},
			),
			PoolsCreated: promauto.NewCounter(
				prometheus.CounterOpts{
					Namespace: "pawdex",
					Subsystem: "dex",
					Name:      "pools_created_total",
					Help:      "Number of markets bootstrapped",
				},
			),
			LiquidityAdded: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Namespace: "pawdex",
					Subsystem: "dex",
					Name:      "liquidity_added_total",
					Help:      "Liquidity deposited by asset",
				},
				[]string{"market", "asset"},
			),
			LiquidityRemoved: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Namespace: "pawdex",
					Subsystem: "dex",
					Name:      "liquidity_removed_total",
					Help:      "Liquidity withdrawn by asset",
				},
				[]string{"market", "asset"},
			),
			FeesDistributed: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Namespace: "pawdex",
					Subsystem: "dex",
					Name:      "fees_distributed_total",
					Help:      "Collected fees paid out to liquidity providers",
				},
				[]string{"market", "asset"},
			),
			ProviderPayouts: promauto.NewCounter(
				prometheus.CounterOpts{
					Namespace: "pawdex",
					Subsystem: "dex",
					Name:      "provider_payouts_total",
					Help:      "Individual payout transfers to liquidity providers",
				},
			),
			DistributionFailures: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Namespace: "pawdex",
					Subsystem: "dex",
					Name:      "distribution_failures_total",
					Help:      "Markets whose distribution was rolled back, by reason",
				},
				[]string{"market", "reason"},
			),
			DistributionDuration: promauto.NewHistogram(
				prometheus.HistogramOpts{
					Namespace: "pawdex",
					Subsystem: "dex",
					Name:      "distribution_duration_seconds",
					Help:      "Time spent in one fee distribution run",
					Buckets:   prometheus.ExponentialBuckets(0.0005, 2, 12),
				},
			),
		}
	})
	return dexMetrics
}

// amountToFloat converts an amount for metric observation. Precision loss
// above 2^53 is acceptable for counters.
func amountToFloat(x math.Int) float64 {
	if x.IsNil() {
		return 0
	}
	f, _ := new(big.Float).SetInt(x.BigInt()).Float64()
	return f
}
