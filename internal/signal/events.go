package signal

// Inbound command names.
const (
	CmdJoinRoom    = "join_room"
	CmdSendMessage = "send_message"
	CmdInvite      = "invite"
	CmdUninvite    = "uninvite"
	CmdGameStart   = "game_start"
)

// Outbound event names.
const (
	EvtJoinRoomResponse    = "join_room_response"
	EvtSendMessageResponse = "send_message_response"
	EvtInviteResponse      = "invite_response"
	EvtInvited             = "invited"
	EvtUninviteResponse    = "uninvite_response"
	EvtUninvited           = "uninvited"
	EvtGameStartResponse   = "game_start_response"
	EvtPlayerDisconnected  = "player_disconnected"
	EvtLog                 = "log"
)

// Result values carried by every response.
const (
	ResultSuccess = "success"
	ResultFail    = "fail"
)

// FailResponse is the shape of every command failure.
type FailResponse struct {
	Result  string `json:"result"`
	Message string `json:"message"`
}

// JoinRoomResponse announces a join to the room, and also carries one
// roster entry per pre-existing member back to the joiner.
type JoinRoomResponse struct {
	Result     string `json:"result"`
	Room       string `json:"room"`
	Username   string `json:"username"`
	ConnID     string `json:"connection_id"`
	Membership int    `json:"membership"`
}

// SendMessageResponse carries a chat message to every room member,
// sender included.
type SendMessageResponse struct {
	Result   string `json:"result"`
	Room     string `json:"room"`
	Username string `json:"username"`
	Message  string `json:"message"`
}

// PairResponse is the shape of invite/uninvite notifications. SocketID
// is the counterparty: the target on the sender's copy, the sender on
// the target's copy.
type PairResponse struct {
	Result   string `json:"result"`
	SocketID string `json:"socket_id"`
}

// GameStartResponse is delivered to both parties with the same GameID.
type GameStartResponse struct {
	Result   string `json:"result"`
	SocketID string `json:"socket_id"`
	GameID   string `json:"game_id"`
}

// PlayerDisconnected announces a departure to the room the participant
// was in.
type PlayerDisconnected struct {
	Username string `json:"username"`
	ConnID   string `json:"connection_id"`
}

// LogEvent mirrors a server log line to clients when client echo is
// enabled.
type LogEvent struct {
	Message string `json:"message"`
}
