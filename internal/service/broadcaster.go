package service

// Broadcaster pushes engine events to a connected user. The WebSocket
// hub implements it; services treat it as optional so the engine also
// runs headless behind the REST API.
type Broadcaster interface {
	SendToUser(userID string, msgType string, payload interface{})
}
