// Package deviceapi is the HTTP surface of the device lifecycle manager.
// Handlers parse and validate requests, delegate to the controller, and map
// its error taxonomy onto the dual HTTP/body status convention.
package deviceapi

import (
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	qrcode "github.com/skip2/go-qrcode"

	"github.com/indeses-deepak/explore/cmd/internal/device"
)

// PathPrefix is the device-management route prefix.
const PathPrefix = "/api/device/"

const qrImageSize = 256

// Handler serves the device management API.
type Handler struct {
	log  *slog.Logger
	ctrl *device.Controller
}

// NewHandler constructs a Handler.
func NewHandler(log *slog.Logger, ctrl *device.Controller) *Handler {
	if log == nil {
		log = slog.Default()
	}
	return &Handler{log: log, ctrl: ctrl}
}

// Register wires device routes onto the mux.
func (h *Handler) Register(mux *http.ServeMux) {
	if h == nil || mux == nil {
		return
	}
	mux.HandleFunc("POST "+PathPrefix+"create", h.handleCreate)
	mux.HandleFunc("POST "+PathPrefix+"status", h.handleStatus)
	mux.HandleFunc("POST "+PathPrefix+"execute", h.handleExecute)
	mux.HandleFunc("POST "+PathPrefix+"messages", h.handleMessages)
	mux.HandleFunc("POST "+PathPrefix+"send-message", h.handleSendMessage)
	mux.HandleFunc("POST "+PathPrefix+"disconnect", h.handleDisconnect)
	mux.HandleFunc("POST "+PathPrefix+"reconnect", h.handleReconnect)
	mux.HandleFunc("POST "+PathPrefix+"groups", h.handleGroups)
	mux.HandleFunc("POST "+PathPrefix+"chats", h.handleChats)
	mux.HandleFunc("GET "+PathPrefix+"devices", h.handleDevices)
}

// decodeDeviceID parses the body and enforces deviceId presence. A missing id
// is the validation outcome: HTTP 200 with body status 401.
func (h *Handler) decodeDeviceID(w http.ResponseWriter, r *http.Request) (string, bool) {
	var req deviceRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeMsg(w, http.StatusOK, codeMissingField, "Device ID is required.")
		return "", false
	}
	if strings.TrimSpace(req.DeviceID) == "" {
		writeMsg(w, http.StatusOK, codeMissingField, "Device ID is required.")
		return "", false
	}
	return req.DeviceID, true
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	deviceID, ok := h.decodeDeviceID(w, r)
	if !ok {
		return
	}

	res, err := h.ctrl.Create(r.Context(), deviceID)
	if err != nil {
		h.log.Error("api.create.fail", "device_id", deviceID, "err", err)
		writeMsg(w, http.StatusInternalServerError, codeFailure, "Failed to create device.")
		return
	}

	switch {
	case res.Challenge != "":
		img, err := challengeDataURL(res.Challenge)
		if err != nil {
			h.log.Error("api.create.qr_encode.fail", "device_id", deviceID, "err", err)
			writeMsg(w, http.StatusInternalServerError, codeFailure, "Failed to render challenge.")
			return
		}
		writeJSON(w, http.StatusOK, challengeResponse{
			Status:   codeChallenge,
			QR:       img,
			DeviceID: deviceID,
			QRImage:  fmt.Sprintf(`<img src="%s" alt="QR Code" />`, img),
		})

	case res.Ready:
		writeJSON(w, http.StatusOK, map[string]any{
			"status":  codeOK,
			"message": "Device reconnected successfully.",
		})

	case res.AuthFailed:
		writeMsg(w, http.StatusInternalServerError, codeFailure, "Device authentication failed.")

	default:
		writeJSON(w, http.StatusOK, map[string]any{
			"status":   codeAccepted,
			"msg":      "Device initialization started successfully.",
			"deviceId": deviceID,
		})
	}
}

func (h *Handler) handleStatus(w http.ResponseWriter, r *http.Request) {
	deviceID, ok := h.decodeDeviceID(w, r)
	if !ok {
		return
	}

	st, err := h.ctrl.DeviceStatus(deviceID)
	if err != nil {
		h.writeNotFound(w, deviceID)
		return
	}
	writeJSON(w, http.StatusOK, statusResponse{Status: codeOK, DeviceID: deviceID, DeviceStatus: st})
}

func (h *Handler) handleExecute(w http.ResponseWriter, r *http.Request) {
	var req executeRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeMsg(w, http.StatusBadRequest, codeMissingField, "Missing deviceId or methodName")
		return
	}
	if strings.TrimSpace(req.DeviceID) == "" || strings.TrimSpace(req.MethodName) == "" {
		writeMsg(w, http.StatusBadRequest, codeMissingField, "Missing deviceId or methodName")
		return
	}

	result, err := h.ctrl.Execute(r.Context(), req.DeviceID, req.MethodName, req.ArgsName)
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, executeResponse{Status: codeOK, Result: result})
	case errors.Is(err, device.ErrMethodNotPermitted):
		writeMsg(w, http.StatusForbidden, codeNotPermitted, fmt.Sprintf("Method %s not allowed.", req.MethodName))
	case errors.Is(err, device.ErrDeviceNotFound), errors.Is(err, device.ErrSessionGone):
		writeMsg(w, http.StatusNotFound, http.StatusNotFound, "Client not found")
	default:
		h.log.Error("api.execute.fail", "device_id", req.DeviceID, "method", req.MethodName, "err", err)
		writeMsg(w, http.StatusInternalServerError, codeFailure, fmt.Sprintf("Error executing %s", req.MethodName))
	}
}

func (h *Handler) handleMessages(w http.ResponseWriter, r *http.Request) {
	deviceID, ok := h.decodeDeviceID(w, r)
	if !ok {
		return
	}

	msgs, err := h.ctrl.Messages(r.Context(), deviceID)
	if err != nil {
		h.writeNotFound(w, deviceID)
		return
	}
	if msgs == nil {
		msgs = []device.StoredMessage{}
	}
	writeJSON(w, http.StatusOK, messagesResponse{Status: codeOK, DeviceID: deviceID, Messages: msgs})
}

func (h *Handler) handleSendMessage(w http.ResponseWriter, r *http.Request) {
	var req sendMessageRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeMsg(w, http.StatusOK, codeMissingField, "Device ID, number, and message are required.")
		return
	}
	if req.DeviceID == "" || req.Number == "" || req.Message == "" {
		writeMsg(w, http.StatusOK, codeMissingField, "Device ID, number, and message are required.")
		return
	}

	in := device.SendInput{
		DeviceID: req.DeviceID,
		Number:   req.Number,
		Body:     req.Message,
		ChatID:   req.ChatID,
		IsGroup:  req.IsGroup,
	}
	if req.AddInFile && req.FileURL != "" {
		in.AttachmentURL = req.FileURL
	}

	err := h.ctrl.Send(r.Context(), in)
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, map[string]any{"status": codeOK, "message": "Message sent successfully."})
	case errors.Is(err, device.ErrDeviceNotFound), errors.Is(err, device.ErrSessionGone):
		h.writeNotFound(w, req.DeviceID)
	case errors.Is(err, device.ErrMediaFetch):
		h.log.Error("api.send.media.fail", "device_id", req.DeviceID, "err", err)
		writeMsg(w, http.StatusInternalServerError, codeFailure, "Failed to load media file.")
	default:
		h.log.Error("api.send.fail", "device_id", req.DeviceID, "err", err)
		writeMsg(w, http.StatusInternalServerError, codeFailure, "Failed to send message.")
	}
}

func (h *Handler) handleDisconnect(w http.ResponseWriter, r *http.Request) {
	deviceID, ok := h.decodeDeviceID(w, r)
	if !ok {
		return
	}

	if err := h.ctrl.Disconnect(r.Context(), deviceID); err != nil {
		h.writeNotFound(w, deviceID)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  codeOK,
		"message": fmt.Sprintf("Device %s disconnected successfully.", deviceID),
	})
}

func (h *Handler) handleReconnect(w http.ResponseWriter, r *http.Request) {
	deviceID, ok := h.decodeDeviceID(w, r)
	if !ok {
		return
	}

	rec, err := h.ctrl.Reconnect(r.Context(), deviceID)
	if err != nil {
		h.writeNotFound(w, deviceID)
		return
	}
	writeJSON(w, http.StatusOK, reconnectResponse{
		Status:  codeOK,
		Message: fmt.Sprintf("Device '%s' reconnected successfully.", deviceID),
		Device:  rec,
	})
}

func (h *Handler) handleGroups(w http.ResponseWriter, r *http.Request) {
	h.serveChats(w, r, true)
}

func (h *Handler) handleChats(w http.ResponseWriter, r *http.Request) {
	h.serveChats(w, r, false)
}

func (h *Handler) serveChats(w http.ResponseWriter, r *http.Request, onlyGroups bool) {
	deviceID, ok := h.decodeDeviceID(w, r)
	if !ok {
		return
	}

	chats, err := h.ctrl.Chats(r.Context(), deviceID, onlyGroups)
	switch {
	case err == nil:
		key := "chats"
		if onlyGroups {
			key = "groups"
		}
		writeJSON(w, http.StatusOK, map[string]any{"status": codeOK, key: chats})
	case errors.Is(err, device.ErrDeviceNotFound), errors.Is(err, device.ErrSessionGone):
		h.writeNotFound(w, deviceID)
	default:
		h.log.Error("api.chats.fail", "device_id", deviceID, "err", err)
		writeMsg(w, http.StatusInternalServerError, codeFailure, "Failed to fetch chats.")
	}
}

func (h *Handler) handleDevices(w http.ResponseWriter, _ *http.Request) {
	infos := h.ctrl.List()
	devices := make([]listEntry, 0, len(infos))
	for _, in := range infos {
		devices = append(devices, listEntry{ID: in.ID, Status: in.Status})
	}
	writeJSON(w, http.StatusOK, devicesResponse{Status: codeOK, Devices: devices})
}

func (h *Handler) writeNotFound(w http.ResponseWriter, deviceID string) {
	writeMsg(w, http.StatusOK, codeNotFound, fmt.Sprintf("Device with ID '%s' not found.", deviceID))
}

// challengeDataURL renders the raw challenge code as a PNG data URL, the
// shape the existing consumers embed directly into an <img> tag.
func challengeDataURL(code string) (string, error) {
	png, err := qrcode.Encode(code, qrcode.Medium, qrImageSize)
	if err != nil {
		return "", err
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(png), nil
}
