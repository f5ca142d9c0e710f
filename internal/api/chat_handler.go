package api

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	app_errors "memochat/internal/errors"
	"memochat/internal/interfaces"
	"memochat/internal/model"
	"memochat/internal/service"
)

const maxMessageFormBytes = 1 << 20

// ChatHandler runs chat turns and streams replies as Server-Sent Events.
type ChatHandler struct {
	service        interfaces.ChatService
	maxUploadBytes int64
}

func NewChatHandler(svc interfaces.ChatService, maxUploadBytes int64) *ChatHandler {
	return &ChatHandler{service: svc, maxUploadBytes: maxUploadBytes}
}

// HandleSendMessage godoc
// @Summary      Send a chat message
// @Description  Appends the message to the open session and streams the assistant reply. Events are start, delta, message and end; failures arrive as an `error` event.
// @Tags         Chat
// @Accept       multipart/form-data,x-www-form-urlencoded
// @Produce      text/event-stream
// @Param        content  formData  string  true  "Message text"
// @Success      200  {object}  model.StreamResponse  "Stream of reply events"
// @Failure      400  {object}  ErrorResponse
// @Failure      401  {object}  ErrorResponse
// @Failure      403  {object}  ErrorResponse
// @Router       /chat/messages [post]
func (h *ChatHandler) HandleSendMessage(w http.ResponseWriter, r *http.Request) {
	st := StateFromContext(r.Context())
	// The chat page posts FormData (multipart); scripts may post url-encoded bodies.
	r.Body = http.MaxBytesReader(w, r.Body, maxMessageFormBytes)
	if err := r.ParseMultipartForm(maxMessageFormBytes); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		respondWithError(w, fmt.Errorf("%w: malformed form: %s", app_errors.ErrValidation, err.Error()))
		return
	}
	form := MessageForm{Content: r.PostFormValue("content")}
	if err := validateRequest(form); err != nil {
		respondWithError(w, err)
		return
	}

	turn, err := h.service.AcceptText(st, form.Content)
	if err != nil {
		respondWithError(w, err)
		return
	}
	h.streamTurn(w, r, turn)
}

// HandleUploadImage godoc
// @Summary      Upload an image
// @Description  Sends a PNG or JPEG with a fixed caption and streams the reply. Re-sending the last accepted upload is a no-op.
// @Tags         Chat
// @Accept       multipart/form-data
// @Produce      text/event-stream
// @Param        image  formData  file  true  "PNG or JPEG image"
// @Success      200  {object}  model.StreamResponse  "Stream of reply events"
// @Success      204  "Duplicate upload, nothing appended"
// @Failure      400  {object}  ErrorResponse
// @Failure      401  {object}  ErrorResponse
// @Failure      413  {object}  ErrorResponse
// @Router       /chat/images [post]
func (h *ChatHandler) HandleUploadImage(w http.ResponseWriter, r *http.Request) {
	st := StateFromContext(r.Context())
	upload, err := h.readUpload(w, r)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respondWithJSON(w, http.StatusRequestEntityTooLarge, ErrorResponse{Error: "The image is too large."})
			return
		}
		respondWithError(w, err)
		return
	}

	turn, err := h.service.AcceptImage(st, upload)
	if err != nil {
		if errors.Is(err, service.ErrDuplicateUpload) {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		respondWithError(w, err)
		return
	}
	h.streamTurn(w, r, turn)
}

func (h *ChatHandler) readUpload(w http.ResponseWriter, r *http.Request) (service.Upload, error) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes+1<<20)
	if err := r.ParseMultipartForm(h.maxUploadBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return service.Upload{}, err
		}
		return service.Upload{}, fmt.Errorf("%w: expected a multipart upload: %s", app_errors.ErrValidation, err.Error())
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		return service.Upload{}, fmt.Errorf("%w: field 'image' is required", app_errors.ErrValidation)
	}
	defer file.Close()

	if header.Size > h.maxUploadBytes {
		return service.Upload{}, &http.MaxBytesError{Limit: h.maxUploadBytes}
	}
	data, err := io.ReadAll(file)
	if err != nil {
		return service.Upload{}, fmt.Errorf("%w: could not read upload: %s", app_errors.ErrValidation, err.Error())
	}
	return service.Upload{Filename: header.Filename, Data: data}, nil
}

// streamTurn relays the turn's events to the client. The turn always runs to
// the end, even if the client goes away, so a finished reply is still saved.
func (h *ChatHandler) streamTurn(w http.ResponseWriter, r *http.Request, turn *service.Turn) {
	prepareStream(w)

	streamChan := make(chan model.StreamResponse)
	ctx := context.WithoutCancel(r.Context())
	go func() {
		if err := h.service.Complete(ctx, turn, streamChan); err != nil {
			slog.Warn("Chat turn did not complete", "error", err)
		}
	}()

	clientGone := false
	for chunk := range streamChan {
		if clientGone {
			continue
		}

		var err error
		if chunk.Event == model.EventError {
			err = sendStreamError(w, chunk.Error)
		} else {
			err = writeStreamEvent(w, chunk)
		}
		if err != nil {
			slog.Info("Client disconnected, finishing turn without it", "session_id", chunk.SessionID, "error", err)
			clientGone = true
		}
	}

	slog.Debug("Finished streaming reply")
}
