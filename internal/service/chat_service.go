package service

import (
	"context"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	app_errors "memochat/internal/errors"
	"memochat/internal/llm"
	"memochat/internal/model"
	"memochat/internal/navigation"
	"memochat/internal/repository"
)

// ImageCaption is the text part sent alongside every uploaded image.
const ImageCaption = "Please analyze this image."

// ErrDuplicateUpload is returned when the same upload is submitted again
// without change. Nothing is appended in that case.
var ErrDuplicateUpload = errors.New("image already uploaded")

var allowedImageTypes = []string{"image/png", "image/jpeg"}

// Upload is an image file submitted from the chat view.
type Upload struct {
	Filename string
	Data     []byte
}

// ID identifies an upload by its name and content.
func (u Upload) ID() string {
	h := sha256.New()
	h.Write([]byte(u.Filename))
	h.Write([]byte{0})
	h.Write(u.Data)
	return hex.EncodeToString(h.Sum(nil))
}

// Turn is a user message that has been appended to the transcript and is
// waiting for its reply. It remembers enough to undo the append.
type Turn struct {
	Message model.Message

	state           *navigation.State
	prevLen         int
	prevImageUpload string
}

type ChatService struct {
	chatLogs repository.ChatLogRepository
	persona  *PersonaService
	provider llm.Provider
	model    string
	window   int
}

func NewChatService(chatLogs repository.ChatLogRepository, persona *PersonaService, provider llm.Provider, modelName string, window int) *ChatService {
	return &ChatService{
		chatLogs: chatLogs,
		persona:  persona,
		provider: provider,
		model:    modelName,
		window:   window,
	}
}

// AcceptText appends a typed message to the open session.
func (s *ChatService) AcceptText(st *navigation.State, text string) (*Turn, error) {
	if !st.InChat() {
		return nil, fmt.Errorf("%w: no open session", app_errors.ErrPermission)
	}
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("%w: message is empty", app_errors.ErrValidation)
	}
	return s.begin(st, model.NewTextMessage(model.RoleUser, text), st.LastUploadedImageID), nil
}

// AcceptImage appends an uploaded PNG or JPEG, paired with ImageCaption.
// Re-submitting the last accepted upload returns ErrDuplicateUpload.
func (s *ChatService) AcceptImage(st *navigation.State, upload Upload) (*Turn, error) {
	if !st.InChat() {
		return nil, fmt.Errorf("%w: no open session", app_errors.ErrPermission)
	}
	if len(upload.Data) == 0 {
		return nil, fmt.Errorf("%w: empty upload", app_errors.ErrValidation)
	}

	id := upload.ID()
	if id == st.LastUploadedImageID {
		return nil, ErrDuplicateUpload
	}

	mime := mimetype.Detect(upload.Data)
	if !mimetype.EqualsAny(mime.String(), allowedImageTypes...) {
		return nil, fmt.Errorf("%w: unsupported image type %s", app_errors.ErrValidation, mime.String())
	}

	dataURI := "data:" + mime.String() + ";base64," + base64.StdEncoding.EncodeToString(upload.Data)
	msg := model.Message{
		Role:    model.RoleUser,
		Content: model.PartsContent(model.TextPart(ImageCaption), model.ImagePart(dataURI)),
	}
	return s.begin(st, msg, id), nil
}

func (s *ChatService) begin(st *navigation.State, msg model.Message, uploadID string) *Turn {
	turn := &Turn{
		Message:         msg,
		state:           st,
		prevLen:         len(st.Messages),
		prevImageUpload: st.LastUploadedImageID,
	}
	st.Messages = append(st.Messages, msg)
	st.LastUploadedImageID = uploadID
	return turn
}

// Complete streams the assistant reply for an accepted turn into streamChan,
// then saves the whole transcript. streamChan is always closed on return.
//
// If the completion fails, the turn is undone and nothing is saved. If only
// the save fails, the reply stays in the in-memory transcript.
func (s *ChatService) Complete(ctx context.Context, turn *Turn, streamChan chan<- model.StreamResponse) error {
	defer close(streamChan)

	st := turn.state
	logger := slog.With("user_id", st.UserID, "session_id", st.SessionID)
	streamChan <- model.StreamResponse{Event: model.EventStart, SessionID: st.SessionID}

	persona, err := s.persona.BuildPersonaPrompt(ctx, st.UserID)
	if err != nil {
		return s.abort(turn, streamChan, logger, err)
	}

	req := &llm.ChatRequest{Model: s.model, Messages: BuildOutbound(persona, st.Messages, s.window)}
	logger.Debug("Requesting completion", "model", s.model, "messages", len(req.Messages))

	stream, err := s.provider.StreamChat(ctx, req)
	if err != nil {
		return s.abort(turn, streamChan, logger, asCompletionError(err))
	}
	defer stream.Close()

	var reply strings.Builder
	for {
		chunk, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return s.abort(turn, streamChan, logger, asCompletionError(err))
		}
		if chunk == "" {
			continue
		}
		reply.WriteString(chunk)
		streamChan <- model.StreamResponse{Event: model.EventDelta, Content: chunk, SessionID: st.SessionID}
	}

	st.Messages = append(st.Messages, model.NewTextMessage(model.RoleAssistant, reply.String()))
	streamChan <- model.StreamResponse{Event: model.EventMessage, Content: reply.String(), SessionID: st.SessionID}

	if err := s.chatLogs.SaveSession(ctx, st.UserID, st.SessionID, st.Messages); err != nil {
		logger.Error("Failed to save session after completion", "error", err)
		streamChan <- model.StreamResponse{Event: model.EventError, SessionID: st.SessionID, Error: UserMessage(err)}
		return fmt.Errorf("could not save session: %w", err)
	}

	logger.Info("Turn completed", "reply_length", reply.Len(), "transcript_length", len(st.Messages))
	streamChan <- model.StreamResponse{Event: model.EventEnd, SessionID: st.SessionID, Done: true}
	return nil
}

func (s *ChatService) abort(turn *Turn, streamChan chan<- model.StreamResponse, logger *slog.Logger, err error) error {
	st := turn.state
	st.Messages = st.Messages[:turn.prevLen]
	st.LastUploadedImageID = turn.prevImageUpload

	logger.Error("Turn aborted", "error", err)
	streamChan <- model.StreamResponse{Event: model.EventError, SessionID: st.SessionID, Error: UserMessage(err)}
	return err
}

func asCompletionError(err error) error {
	if errors.Is(err, app_errors.ErrCompletionService) {
		return err
	}
	return fmt.Errorf("%w: %w", app_errors.ErrCompletionService, err)
}

// BuildOutbound prepends the persona as a system message to the last window
// messages of transcript, oldest first. Content is passed through unchanged.
func BuildOutbound(persona string, transcript []model.Message, window int) []model.Message {
	recent := transcript
	if window >= 0 && len(recent) > window {
		recent = recent[len(recent)-window:]
	}
	out := make([]model.Message, 0, len(recent)+1)
	out = append(out, model.NewTextMessage(model.RoleSystem, persona))
	return append(out, recent...)
}

// UserMessage turns a turn failure into text suitable for the chat view.
func UserMessage(err error) string {
	switch {
	case errors.Is(err, app_errors.ErrCompletionService):
		return "The assistant is unavailable right now. Please try again."
	case errors.Is(err, app_errors.ErrPersistence):
		return "The conversation store is unavailable. Please try again later."
	default:
		return "Something went wrong."
	}
}
