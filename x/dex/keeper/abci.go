package keeper

import (
	"context"
	"time"

	"github.com/cosmos/cosmos-sdk/telemetry"
	sdk "github.com/cosmos/cosmos-sdk/types"
	"github.com/hashicorp/go-metrics"

	"github.com/paw-chain/pawdex/x/dex/types"
)

// EndBlocker is called at the end of every block. It distributes collected
// fees every DistributionInterval blocks.
func (k Keeper) EndBlocker(ctx context.Context) error {
	defer telemetry.ModuleMeasureSince(types.ModuleName, time.Now(), telemetry.MetricKeyEndBlocker)

	sdkCtx := sdk.UnwrapSDKContext(ctx)

	params, err := k.GetParams(ctx)
	if err != nil {
		sdkCtx.Logger().Error("failed to load dex params", "error", err)
		return nil
	}
	if !isDistributionHeight(sdkCtx.BlockHeight(), params.DistributionInterval) {
		return nil
	}

	// Failed markets keep their counters and are retried next interval.
	// Don't return error - log and continue to prevent block production halt
	report, err := k.DistributeFees(ctx)
	if err != nil {
		sdkCtx.Logger().Error("failed to distribute fees", "height", sdkCtx.BlockHeight(), "error", err)
		telemetry.IncrCounterWithLabels(
			[]string{types.ModuleName, "distribution_failures"},
			float32(len(report.Failed)),
			[]metrics.Label{telemetry.NewLabel("trigger", "end_blocker")},
		)
	}
	return nil
}

func isDistributionHeight(height, interval int64) bool {
	return interval > 0 && height > 0 && height%interval == 0
}
