package apimodels

const (
	StatusSuccess        = "success"
	StatusFail           = "fail"
	StatusStarted        = "started"
	StatusAlreadyRunning = "already_running"
)

type Response struct {
	Status  string      `json:"status"`            // success/fail, started/already_running for batch start
	Message string      `json:"message,omitempty"` // error text
	Data    interface{} `json:"data,omitempty"`    // payload
}

type ScrollerResponse struct {
	Response
	RowCount int64 `json:"row_count,omitempty"` // total number of rows in a list
}

func NewError(message string) Response {
	return Response{
		Status:  StatusFail,
		Message: message,
	}
}

func NewResponse(data interface{}) Response {
	return Response{
		Status: StatusSuccess,
		Data:   data,
	}
}

func NewMessage(message string) Response {
	return Response{
		Status:  StatusSuccess,
		Message: message,
	}
}

func NewScrollerResponse(data interface{}, rowCount int64) ScrollerResponse {
	return ScrollerResponse{
		Response: Response{
			Status: StatusSuccess,
			Data:   data,
		},
		RowCount: rowCount,
	}
}
