package network

// Inbound events, client to server.
const (
	EventCreateLobby  = "createLobby"
	EventJoinLobby    = "joinLobby"
	EventSubmitAnswer = "submitAnswer"
)

// Outbound events, server to one connection or to a whole room.
const (
	EventRequestName  = "requestName"
	EventLobbyCreated = "lobbyCreated"
	EventPlayerInfo   = "playerInfo"
	EventJoinSuccess  = "joinSuccess"
	EventLobbyUpdate  = "lobbyUpdate"
	EventError        = "error"
	EventGameStarted  = "gameStarted"
	EventScoreUpdate  = "scoreUpdate"
	EventTugUpdate    = "tugUpdate"
	EventNewQuestion  = "newQuestion"
	EventMessage      = "message"
	EventGameOver     = "gameOver"
	EventGameReset    = "gameReset"
)
