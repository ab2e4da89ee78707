package authtest

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
)

var Secret = []byte("authtest-secret")

// Account is a user known to the server.
type Account struct {
	ID       int
	Username string
	Password string
	Email    string
	IsClient bool
	// Face, when set, is the exact image bytes that log this account in.
	Face []byte
}

// Server serves login-coach/, coach-face-login/ and request-password-reset/
// under /api/.
type Server struct {
	*httptest.Server

	mu         sync.Mutex
	accounts   []Account
	requestIDs []string
	resets     []string
}

func NewServer(t testing.TB, accounts ...Account) *Server {
	t.Helper()
	s := &Server{accounts: accounts}

	r := chi.NewRouter()
	r.Use(s.recordRequestID)
	r.Route("/api", func(r chi.Router) {
		r.Post("/login-coach/", s.login)
		r.Post("/coach-face-login/", s.faceLogin)
		r.Post("/request-password-reset/", s.reset)
	})

	s.Server = httptest.NewServer(r)
	t.Cleanup(s.Close)
	return s
}

// BaseURL is the API root to configure the client with.
func (s *Server) BaseURL() string {
	return s.URL + "/api/"
}

func (s *Server) RequestIDs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.requestIDs...)
}

// Resets lists identifiers that were accepted by request-password-reset/.
func (s *Server) Resets() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.resets...)
}

func (s *Server) recordRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.requestIDs = append(s.requestIDs, r.Header.Get("X-Request-ID"))
		s.mu.Unlock()
		next.ServeHTTP(w, r)
	})
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeDetail(w, http.StatusBadRequest, "Malformed request.")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range s.accounts {
		if a.Username == body.Username && a.Password == body.Password {
			writeAuth(w, a)
			return
		}
	}
	writeDetail(w, http.StatusUnauthorized, "Invalid credentials")
}

func (s *Server) faceLogin(w http.ResponseWriter, r *http.Request) {
	f, _, err := r.FormFile("image")
	if err != nil {
		writeDetail(w, http.StatusBadRequest, "No image provided.")
		return
	}
	defer f.Close()
	img, err := io.ReadAll(f)
	if err != nil {
		writeDetail(w, http.StatusBadRequest, "Unreadable image.")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range s.accounts {
		if len(a.Face) > 0 && string(a.Face) == string(img) {
			writeAuth(w, a)
			return
		}
	}
	writeDetail(w, http.StatusUnauthorized, "Face not recognized")
}

func (s *Server) reset(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Identifier string `json:"identifier"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeDetail(w, http.StatusBadRequest, "Malformed request.")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range s.accounts {
		if body.Identifier != "" && (a.Email == body.Identifier || a.Username == body.Identifier) {
			s.resets = append(s.resets, body.Identifier)
			w.Header().Set("Content-Type", "application/json")
			_, _ = io.WriteString(w, `{"message":"sent"}`)
			return
		}
	}
	writeDetail(w, http.StatusNotFound, "No account found with that identifier.")
}

func writeAuth(w http.ResponseWriter, a Account) {
	uid := a.Username
	access, err := GenerateToken(uid, "access", Secret, 5*time.Minute)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	refresh, err := GenerateToken(uid, "refresh", Secret, 24*time.Hour)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"token": map[string]string{"access": access, "refresh": refresh},
		"user": map[string]any{
			"id":        a.ID,
			"username":  a.Username,
			"email":     a.Email,
			"is_client": a.IsClient,
		},
	})
}

func writeDetail(w http.ResponseWriter, status int, detail string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"detail": detail})
}
