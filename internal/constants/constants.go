package constants

const (
	MinBoxNumber   = 1
	MaxBoxNumber   = 50
	RewardBoxCount = 15
	MaxRewards     = 5
	StartChances   = 3
)

const (
	MessagePong          = "pong"
	MessageNotRegistered = "User not registered."
	MessageNoChances     = "No remaining chances."
	MessageBoxSelected   = "Box already selected."
	MessageWon           = "You won!"
	MessageNoReward      = "No reward"
	MessageGameReset     = "Game reset!"
	MessageInternalError = "Internal server error."
	MessageBadUsername   = "Username is required."
	MessageBadBoxNumber  = "Box number is required."
)

const (
	RoutePing      = "/api/ping"
	RouteRegister  = "/api/register"
	RouteSelectBox = "/api/select-box"
	RouteReset     = "/api/reset"
	RouteHealthz   = "/healthz"
	RouteMetrics   = "/metrics"
)

const (
	StoreDriverFile   = "file"
	StoreDriverSQLite = "sqlite"
	StoreDriverMemory = "memory"
)

type contextKey string

const (
	RequestIDKey contextKey = "request_id"
)
