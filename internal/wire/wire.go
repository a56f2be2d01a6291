// Package wire defines the JSON envelope types exchanged with clients, the
// event name constants, and the closed error-code set the dispatcher maps
// internal failures onto. Nothing in this package talks to a socket;
// internal/transport and cmd/server own the actual transport.
package wire

// Event discriminators, client to server.
const (
	EventRoomCreate     = "room.create"
	EventRoomJoin       = "room.join"
	EventSessionResume  = "session.resume"
	EventActionSubmit   = "action.submit"
	EventVoteCast       = "vote.cast"
	EventHostAction     = "host.action"
	EventChatMessage    = "chat.message"
)

// Event discriminators, server to client.
const (
	EventRoomSnapshot      = "room.snapshot"
	EventPhaseChange       = "phase.change"
	EventActionAck         = "action.ack"
	EventVoteUpdate        = "vote.update"
	EventNightPublicResult = "night.publicResult"
	EventDetectiveResult   = "detective.result"
	EventLynchResult       = "lynch.result"
	EventPlayerStatus      = "player.status"
	EventHostNudge         = "host.nudge"
	EventError             = "error"
	EventSessionEvicted    = "session.evicted"
)

// HostSubAction is the action field of a host.action payload.
type HostSubAction string

const (
	HostActionKick  HostSubAction = "kick"
	HostActionMute  HostSubAction = "mute"
	HostActionNudge HostSubAction = "nudge"
	HostActionStart HostSubAction = "start"
)

// ChatChannel restricts a chat.message to an audience.
type ChatChannel string

const (
	ChatDay        ChatChannel = "day"
	ChatNightMafia ChatChannel = "nightMafia"
	ChatDead       ChatChannel = "dead"
	ChatLobby      ChatChannel = "lobby"
)

// ErrorCode is the closed set of wire-level error kinds a client can
// receive in an error envelope.
type ErrorCode string

const (
	ErrorWrongPhase          ErrorCode = "WRONG_PHASE"
	ErrorDeadPlayer          ErrorCode = "DEAD_PLAYER"
	ErrorInvalidTarget       ErrorCode = "INVALID_TARGET"
	ErrorAlreadySubmitted    ErrorCode = "ALREADY_SUBMITTED"
	ErrorIdempotentDuplicate ErrorCode = "IDEMPOTENT_DUPLICATE"
	ErrorRoomFull            ErrorCode = "ROOM_FULL"
	ErrorRoomNotFound        ErrorCode = "ROOM_NOT_FOUND"
	ErrorUnauthorized        ErrorCode = "UNAUTHORIZED"
	ErrorRateLimited         ErrorCode = "RATE_LIMITED"
	ErrorInvalidName         ErrorCode = "INVALID_NAME"
	ErrorInternal            ErrorCode = "INTERNAL_ERROR"
)

// Envelope is the outer shape of every message exchanged over the
// transport, discriminated by Event.
type Envelope struct {
	Event    string `json:"event"`
	RoomID   string `json:"roomId,omitempty"`
	ActionID string `json:"actionId,omitempty"`
	Payload  any    `json:"payload,omitempty"`
}

// --- client -> server payloads ---

type RoomCreatePayload struct {
	HostName string `json:"hostName"`
}

type RoomJoinPayload struct {
	RoomCode   string `json:"roomCode"`
	PlayerName string `json:"playerName"`
	SessionID  string `json:"sessionId,omitempty"`
}

type SessionResumePayload struct {
	RoomID    string `json:"roomId"`
	SessionID string `json:"sessionId"`
	JWT       string `json:"jwt"`
}

type ActionSubmitPayload struct {
	ActionID string `json:"actionId"`
	Type     string `json:"type"`
	TargetID string `json:"targetId"`
}

type VoteCastPayload struct {
	ActionID string  `json:"actionId"`
	TargetID *string `json:"targetId"`
}

type HostActionPayload struct {
	Action   HostSubAction `json:"action"`
	TargetID string        `json:"targetId,omitempty"`
}

type ChatMessagePayload struct {
	MessageID string      `json:"messageId"`
	Channel   ChatChannel `json:"channel"`
	Content   string      `json:"content"`
}

// --- server -> client payloads ---

// RoomSnapshotPayload wraps a redact.View (kept as `any` here to avoid an
// import cycle between internal/wire and internal/redact; internal/dispatch
// sets View to a *redact.View when building the envelope). JWT/SessionID
// are populated only on first issue or refresh.
type RoomSnapshotPayload struct {
	View      any    `json:"view"`
	JWT       string `json:"jwt,omitempty"`
	SessionID string `json:"sessionId,omitempty"`
}

type PhaseChangePayload struct {
	Phase string `json:"phase"`
	Timer any    `json:"timer"`
	Night bool   `json:"night"`
}

type ActionAckPayload struct {
	ActionID string `json:"actionId"`
	Type     string `json:"type"`
	TargetID string `json:"targetId"`
}

type VoteUpdatePayload struct {
	PlayerID string         `json:"playerId"`
	TargetID string         `json:"targetId,omitempty"`
	Tallies  map[string]int `json:"tallies,omitempty"`
}

type NightPublicResultPayload struct {
	Death     string `json:"death,omitempty"`
	Narrative string `json:"narrative"`
}

type DetectiveResultPayload struct {
	TargetID string `json:"targetId"`
	IsMafia  bool   `json:"isMafia"`
}

type LynchResultPayload struct {
	TargetID  string `json:"targetId,omitempty"`
	Narrative string `json:"narrative"`
}

type PlayerStatusPayload struct {
	PlayerID  string `json:"playerId"`
	Connected bool   `json:"connected"`
	Alive     bool   `json:"alive"`
}

// HostNudgePayload is a direct, non-authoritative reminder the host can
// send one player, carrying no state change of its own.
type HostNudgePayload struct {
	Message string `json:"message"`
}

// ErrorPayload is the Payload of an "error" envelope.
type ErrorPayload struct {
	Code      ErrorCode `json:"code"`
	Message   string    `json:"message"`
	Retryable bool      `json:"retryable"`
	Context   string    `json:"context,omitempty"`
}

type SessionEvictedPayload struct {
	Reason  string `json:"reason"`
	Message string `json:"message"`
}
