package app

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/paw-chain/pawdex/x/dex/ledger"
	dextypes "github.com/paw-chain/pawdex/x/dex/types"
)

// GenesisState is a map from module name to module genesis state.
type GenesisState map[string]json.RawMessage

// NewDefaultGenesisState returns the genesis of an empty exchange with the
// given dex params.
func NewDefaultGenesisState(params dextypes.Params) GenesisState {
	dexGenesis := dextypes.DefaultGenesis()
	dexGenesis.Params = params

	genesis := make(GenesisState)
	genesis[dextypes.ModuleName] = mustMarshalJSON(dexGenesis)
	genesis[ledger.ModuleName] = mustMarshalJSON(ledger.DefaultGenesis())
	return genesis
}

func mustMarshalJSON(v any) json.RawMessage {
	bz, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return bz
}

// Decode splits the genesis into module states. Missing modules get defaults.
func (gs GenesisState) Decode() (*dextypes.GenesisState, *ledger.GenesisState, error) {
	dexGenesis := dextypes.DefaultGenesis()
	if raw, ok := gs[dextypes.ModuleName]; ok {
		if err := json.Unmarshal(raw, dexGenesis); err != nil {
			return nil, nil, dextypes.ErrInvalidGenesis.Wrapf("decode %s: %s", dextypes.ModuleName, err)
		}
	}
	ledgerGenesis := ledger.DefaultGenesis()
	if raw, ok := gs[ledger.ModuleName]; ok {
		if err := json.Unmarshal(raw, ledgerGenesis); err != nil {
			return nil, nil, dextypes.ErrInvalidGenesis.Wrapf("decode %s: %s", ledger.ModuleName, err)
		}
	}
	return dexGenesis, ledgerGenesis, nil
}

// Validate checks every module genesis
func (gs GenesisState) Validate() error {
	dexGenesis, ledgerGenesis, err := gs.Decode()
	if err != nil {
		return err
	}
	if err := dexGenesis.Validate(); err != nil {
		return err
	}
	return ledgerGenesis.Validate()
}

// LoadGenesisFile reads a genesis document
func LoadGenesisFile(path string) (GenesisState, error) {
	bz, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read genesis: %w", err)
	}
	var gs GenesisState
	if err := json.Unmarshal(bz, &gs); err != nil {
		return nil, fmt.Errorf("decode genesis %s: %w", path, err)
	}
	return gs, nil
}

// SaveFile writes the genesis document, creating parent directories
func (gs GenesisState) SaveFile(path string) error {
	bz, err := json.MarshalIndent(gs, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, bz, 0o644)
}

// InitChain loads genesis into an empty store as block one
func (a *App) InitChain(ctx context.Context, gs GenesisState) error {
	if h := a.Height(); h != 0 {
		return fmt.Errorf("%w at height %d", ErrAlreadyInitialized, h)
	}
	dexGenesis, ledgerGenesis, err := gs.Decode()
	if err != nil {
		return err
	}
	_, err = a.Exec(ctx, func(sdkCtx sdk.Context) error {
		if err := a.LedgerKeeper.InitGenesis(sdkCtx, *ledgerGenesis); err != nil {
			return err
		}
		if err := a.DexKeeper.InitGenesis(sdkCtx, *dexGenesis); err != nil {
			return err
		}
		if msg, broken := a.checkInvariants(sdkCtx); broken {
			return dextypes.ErrInvalidGenesis.Wrap(msg)
		}
		return nil
	})
	return err
}

// ExportGenesis dumps the committed state as a genesis document
func (a *App) ExportGenesis(ctx context.Context) (GenesisState, error) {
	genesis := make(GenesisState)
	err := a.Query(ctx, func(sdkCtx sdk.Context) error {
		dexGenesis, err := a.DexKeeper.ExportGenesis(sdkCtx)
		if err != nil {
			return err
		}
		ledgerGenesis, err := a.LedgerKeeper.ExportGenesis(sdkCtx)
		if err != nil {
			return err
		}
		genesis[dextypes.ModuleName] = mustMarshalJSON(dexGenesis)
		genesis[ledger.ModuleName] = mustMarshalJSON(ledgerGenesis)
		return nil
	})
	return genesis, err
}
