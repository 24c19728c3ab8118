package deviceapi

import "github.com/indeses-deepak/explore/cmd/internal/device"

// Request field names mirror the existing API surface verbatim.

type deviceRequest struct {
	DeviceID string `json:"deviceId"`
}

type executeRequest struct {
	DeviceID   string `json:"deviceId"`
	MethodName string `json:"methodName"`
	ArgsName   []any  `json:"argsName"`
}

type sendMessageRequest struct {
	DeviceID  string `json:"deviceId"`
	Number    string `json:"number"`
	Message   string `json:"message"`
	IsGroup   bool   `json:"isGroup"`
	ChatID    string `json:"chatId"`
	AddInFile bool   `json:"addInFile"`
	FileURL   string `json:"file_url"`
}

type challengeResponse struct {
	Status   int    `json:"status"`
	QR       string `json:"qr"`
	DeviceID string `json:"deviceId"`
	QRImage  string `json:"qrImage"`
}

type statusResponse struct {
	Status       int           `json:"status"`
	DeviceID     string        `json:"deviceId"`
	DeviceStatus device.Status `json:"device_status"`
}

type messagesResponse struct {
	Status   int                    `json:"status"`
	DeviceID string                 `json:"deviceId"`
	Messages []device.StoredMessage `json:"messages"`
}

type listEntry struct {
	ID     string        `json:"id"`
	Status device.Status `json:"status"`
}

type devicesResponse struct {
	Status  int         `json:"status"`
	Devices []listEntry `json:"devices"`
}

type reconnectResponse struct {
	Status  int           `json:"status"`
	Message string        `json:"message"`
	Device  device.Record `json:"device"`
}

type executeResponse struct {
	Status int `json:"status"`
	Result any `json:"result"`
}
