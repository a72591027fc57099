package protocol

type RegisterOperationType string

// An agent first informs the registry who it is, then adds itself;
// the entry lives as long as the websocket does.
const (
	RegisterOperationInform RegisterOperationType = "inform"
	RegisterOperationAdd    RegisterOperationType = "add"
	RegisterOperationDelete RegisterOperationType = "delete"
	RegisterOperationHas    RegisterOperationType = "has"
	RegisterOperationNoop   RegisterOperationType = "noop"
)

type ClientRegisterMessage struct {
	Operation RegisterOperationType `json:"operation"`
	// Data is only read on inform.
	Data *Service `json:"data"`
}

type ServerRegisterMessage struct {
	ResponseBase
	Has     bool     `json:"has"`
	Service *Service `json:"service"`
}
