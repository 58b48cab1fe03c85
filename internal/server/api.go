package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/abhisek/olive/internal/progress"
	"github.com/abhisek/olive/internal/quiz"
	"github.com/abhisek/olive/internal/reminder"
	"github.com/abhisek/olive/internal/session"
	"github.com/abhisek/olive/internal/subject"
	"github.com/abhisek/olive/internal/transcript"
	"github.com/abhisek/olive/internal/tutor"
)

type profileResponse struct {
	UserID           string       `json:"user_id"`
	Avatar           string       `json:"avatar"`
	Mode             session.Mode `json:"mode"`
	LessonsCompleted int          `json:"lessons_completed"`
	GamesUnlocked    bool         `json:"games_unlocked"`
	LessonsToUnlock  int          `json:"lessons_to_unlock"`
}

type subjectsResponse struct {
	Active   string            `json:"active"`
	Subjects []subject.Subject `json:"subjects"`
}

type transcriptResponse struct {
	Key      transcript.Key       `json:"key"`
	Messages []transcript.Message `json:"messages"`
}

type studyResponse struct {
	Subject  subject.Subject      `json:"subject"`
	Messages []transcript.Message `json:"messages"`
}

type chatRequest struct {
	Mode session.Mode `json:"mode"`
	Text string       `json:"text"`
}

type chatResponse struct {
	Reply            transcript.Message `json:"reply"`
	LessonsCompleted int                `json:"lessons_completed"`
	JustUnlocked     bool               `json:"just_unlocked"`
	Error            string             `json:"error,omitempty"`
}

type quizResponse struct {
	Topic    string        `json:"topic"`
	Question string        `json:"question"`
	Choices  []quiz.Choice `json:"choices"`
	Fallback bool          `json:"fallback"`
}

type answerRequest struct {
	Answer string `json:"answer"`
}

type answerResponse struct {
	Correct     bool   `json:"correct"`
	Answer      string `json:"answer"`
	Explanation string `json:"explanation,omitempty"`
}

type reminderRequest struct {
	Type reminder.Type `json:"type"`
}

func (s *Server) session(r *http.Request) *session.Session {
	return s.hub.Get(r.Context(), UserIDFromContext(r.Context()))
}

func (s *Server) getProfile(w http.ResponseWriter, r *http.Request) {
	JSON(w, http.StatusOK, profileOf(s.session(r)))
}

func profileOf(sess *session.Session) profileResponse {
	lessons := sess.Progress.Value()
	return profileResponse{
		UserID:           sess.UserID,
		Avatar:           sess.Avatar(),
		Mode:             sess.Mode(),
		LessonsCompleted: lessons,
		GamesUnlocked:    progress.IsUnlocked(lessons),
		LessonsToUnlock:  progress.Remaining(lessons),
	}
}

func (s *Server) putAvatar(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Avatar string `json:"avatar"`
	}
	if err := decodeJSON(r, &req); err != nil {
		Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	sess := s.session(r)
	if err := sess.SetAvatar(r.Context(), req.Avatar); err != nil {
		Error(w, http.StatusBadRequest, err.Error())
		return
	}
	JSON(w, http.StatusOK, profileOf(sess))
}

func (s *Server) changeFriend(w http.ResponseWriter, r *http.Request) {
	sess := s.session(r)
	sess.ChangeFriend()
	JSON(w, http.StatusOK, profileOf(sess))
}

func (s *Server) reset(w http.ResponseWriter, r *http.Request) {
	sess := s.session(r)
	if err := sess.Reset(r.Context()); err != nil {
		if errors.Is(err, session.ErrTurnInProgress) {
			Error(w, http.StatusConflict, err.Error())
			return
		}
		s.logger.Error("reset", "user", sess.UserID, "err", err)
		Error(w, http.StatusInternalServerError, "reset failed")
		return
	}
	JSON(w, http.StatusOK, profileOf(sess))
}

func (s *Server) listSubjects(w http.ResponseWriter, r *http.Request) {
	sess := s.session(r)
	JSON(w, http.StatusOK, subjectsResponse{
		Active:   sess.Subjects.Active().ID,
		Subjects: sess.Subjects.All(),
	})
}

func (s *Server) addSubject(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
		Icon string `json:"icon"`
	}
	if err := decodeJSON(r, &req); err != nil {
		Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		Error(w, http.StatusBadRequest, "name is required")
		return
	}
	icon := strings.TrimSpace(req.Icon)
	if icon == "" {
		icon = subject.DefaultIcon
	}
	JSON(w, http.StatusCreated, s.session(r).AddSubject(r.Context(), name, icon))
}

func (s *Server) selectSubject(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ID string `json:"id"`
	}
	if err := decodeJSON(r, &req); err != nil {
		Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	subj, err := s.session(r).SelectSubject(r.Context(), req.ID)
	if err != nil {
		Error(w, http.StatusNotFound, err.Error())
		return
	}
	JSON(w, http.StatusOK, subj)
}

func (s *Server) getTranscript(w http.ResponseWriter, r *http.Request) {
	key := transcript.Key{
		Space: transcript.Space(chi.URLParam(r, "space")),
		ID:    chi.URLParam(r, "subjectID"),
	}
	if key.Space != transcript.SpaceChat && key.Space != transcript.SpaceStudy {
		Error(w, http.StatusBadRequest, "space must be chat or study")
		return
	}
	sess := s.session(r)
	if _, ok := sess.Subjects.Get(key.ID); !ok {
		Error(w, http.StatusNotFound, subject.ErrUnknownSubject.Error())
		return
	}
	JSON(w, http.StatusOK, transcriptResponse{Key: key, Messages: sess.Transcript(r.Context(), key)})
}

func (s *Server) openStudy(w http.ResponseWriter, r *http.Request) {
	subj, msgs, err := s.session(r).OpenStudy(r.Context())
	if err != nil {
		Error(w, http.StatusConflict, err.Error())
		return
	}
	JSON(w, http.StatusOK, studyResponse{Subject: subj, Messages: msgs})
}

// chat runs a whole turn and answers once it is complete. Use /ws/chat to
// receive the reply as it streams.
func (s *Server) chat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := decodeJSON(r, &req); err != nil {
		Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	res, err := s.runTurn(r, s.session(r), req, nil)
	if err != nil {
		Error(w, turnErrorStatus(err), err.Error())
		return
	}
	JSON(w, http.StatusOK, chatResponseOf(res))
}

func (s *Server) runTurn(r *http.Request, sess *session.Session, req chatRequest, onEvent tutor.EventFunc) (tutor.Result, error) {
	switch req.Mode {
	case session.ModeStudy:
		return s.tutor.Study(r.Context(), sess, req.Text, onEvent)
	case session.ModeChat, "":
		return s.tutor.Chat(r.Context(), sess, req.Text, onEvent)
	}
	return tutor.Result{}, errUnknownMode
}

var errUnknownMode = errors.New("mode must be chat or study")

func turnErrorStatus(err error) int {
	switch {
	case errors.Is(err, tutor.ErrEmptyUtterance), errors.Is(err, errUnknownMode):
		return http.StatusBadRequest
	case errors.Is(err, session.ErrTurnInProgress), errors.Is(err, session.ErrNoStudySubject):
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

func chatResponseOf(res tutor.Result) chatResponse {
	out := chatResponse{
		Reply:            res.Reply,
		LessonsCompleted: res.Step.After,
		JustUnlocked:     res.Step.JustUnlocked(),
	}
	if res.Err != nil {
		out.Error = res.Err.UserMessage()
	}
	return out
}

func (s *Server) newQuiz(w http.ResponseWriter, r *http.Request) {
	sess := s.session(r)
	topic := sess.RequestQuiz(r.Context())
	q, err := s.quiz.Generate(r.Context(), topic)
	if err != nil {
		s.logger.Warn("quiz generation failed", "user", sess.UserID, "topic", topic, "err", err)
	}
	sess.SetQuiz(q)
	JSON(w, http.StatusOK, quizResponse{
		Topic:    topic,
		Question: q.Text,
		Choices:  q.Choices,
		Fallback: q.IsFallback(),
	})
}

func (s *Server) answerQuiz(w http.ResponseWriter, r *http.Request) {
	var req answerRequest
	if err := decodeJSON(r, &req); err != nil {
		Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	q := s.session(r).Quiz()
	if q == nil {
		Error(w, http.StatusConflict, "no quiz in progress")
		return
	}
	correct, err := q.Grade(req.Answer)
	switch {
	case errors.Is(err, quiz.ErrInvalidAnswer):
		Error(w, http.StatusBadRequest, err.Error())
		return
	case errors.Is(err, quiz.ErrNoAnswerKey):
		Error(w, http.StatusUnprocessableEntity, err.Error())
		return
	case err != nil:
		Error(w, http.StatusInternalServerError, err.Error())
		return
	}
	JSON(w, http.StatusOK, answerResponse{
		Correct:     correct,
		Answer:      q.Correct,
		Explanation: q.Explanation,
	})
}

func (s *Server) listReminders(w http.ResponseWriter, r *http.Request) {
	JSON(w, http.StatusOK, s.session(r).Reminders.All())
}

func (s *Server) addReminder(w http.ResponseWriter, r *http.Request) {
	var req reminderRequest
	if err := decodeJSON(r, &req); err != nil {
		Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	sess := s.session(r)
	topic := sess.QuizTopic()
	var rem reminder.Reminder
	switch req.Type {
	case reminder.TypeQuiz:
		rem = sess.RemindQuiz(r.Context(), topic)
	case reminder.TypeRevision:
		rem = sess.RemindRevision(r.Context(), topic)
	default:
		Error(w, http.StatusBadRequest, "type must be Quiz or Revision")
		return
	}
	JSON(w, http.StatusCreated, rem)
}

func (s *Server) games(w http.ResponseWriter, r *http.Request) {
	JSON(w, http.StatusOK, progress.CornerFor(s.session(r).Progress.Value()))
}
