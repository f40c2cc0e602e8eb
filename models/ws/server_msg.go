package wsmodels

import "time"

const (
	CodeProgress = "progress"
	CodeFinished = "finished"
)

type ServerMessage struct {
	Time   string `json:"time"`   // event time, RFC3339
	Code   string `json:"code"`   // progress | finished
	Msg    string `json:"msg"`    // log line
	Offset int    `json:"offset"` // position of the line in the run log
}

func NewProgress(at time.Time, msg string, offset int) ServerMessage {
	return ServerMessage{Time: at.Format(time.RFC3339), Code: CodeProgress, Msg: msg, Offset: offset}
}

func NewFinished(state string, offset int) ServerMessage {
	return ServerMessage{Time: time.Now().Format(time.RFC3339), Code: CodeFinished, Msg: state, Offset: offset}
}
