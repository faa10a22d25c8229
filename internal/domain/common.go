package domain

// InstrumentKind identifies the kind of instrument a position holds.
type InstrumentKind string

const (
	Spot      InstrumentKind = "spot"
	Perpetual InstrumentKind = "perpetual"
	Option    InstrumentKind = "option"
)

// OptionKind identifies a call or put option.
type OptionKind string

const (
	Call OptionKind = "call"
	Put  OptionKind = "put"
)

// TransactionKind categorizes a ledger transaction.
type TransactionKind string

const (
	TxBuy    TransactionKind = "buy"
	TxSell   TransactionKind = "sell"
	TxAdd    TransactionKind = "add"
	TxRemove TransactionKind = "remove"
	TxHedge  TransactionKind = "hedge"
)

// StrategyKind identifies a hedge structure built by the strategy package.
type StrategyKind string

const (
	ProtectivePut       StrategyKind = "protective_put"
	CoveredCall         StrategyKind = "covered_call"
	Collar              StrategyKind = "collar"
	Straddle            StrategyKind = "straddle"
	Butterfly           StrategyKind = "butterfly"
	IronCondor          StrategyKind = "iron_condor"
	PerpetualDeltaHedge StrategyKind = "perp_delta_neutral"
	DynamicHedge        StrategyKind = "dynamic_hedge"
)
