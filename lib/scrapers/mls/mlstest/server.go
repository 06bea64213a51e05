// Package mlstest runs a fake MLS website for tests.
package mlstest

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
)

const (
	sessionCookie = "mlstest_session"
	authCookie    = "mlstest_auth"
)

type Photo struct {
	ContentType string
	Data        []byte
}

// Server is a fake of the identity service and MLS in one. Configure the
// exported fields before the first request.
type Server struct {
	Username   string
	Password   string
	UnitNumber string

	MemberList             any
	MembersWithCallings    any
	MembersWithoutCallings any

	// Photos maps a member id to the photo served for it, members not in
	// the map have a null uri.
	Photos map[int64]Photo
	// BrokenPhotos maps a member id to the status its photo download answers
	// with, the lookup still resolves a uri for them.
	BrokenPhotos map[int64]int
	// MalformedLookup is the 1-based index of the photo lookup that answers
	// with a body that is not json, 0 means never.
	MalformedLookup int

	URL string

	httpServer *httptest.Server

	mu           sync.Mutex
	loginGets    int
	loginPosts   int
	requests     map[string]int
	lookups      [][]int64
	downloads    []int64
	reportQuery  map[string]string
	acceptHeader map[string]string
}

func NewServer() *Server {
	s := &Server{
		Username:     "user",
		Password:     "pass",
		UnitNumber:   "12345",
		Photos:       map[int64]Photo{},
		BrokenPhotos: map[int64]int{},
		requests:     map[string]int{},
		reportQuery:  map[string]string{},
		acceptHeader: map[string]string{},
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /sso/UI/Login", s.handleLoginPage)
	mux.HandleFunc("POST /sso/UI/Login", s.handleLogin)
	mux.HandleFunc("GET /mls/mbr/records/member-list", s.authed(s.handleMemberListPage))
	mux.HandleFunc("GET /mls/mbr/services/report/member-list", s.authed(s.report(func() any { return s.MemberList }, false)))
	mux.HandleFunc("GET /mls/mbr/services/report/members-with-callings", s.authed(s.report(func() any { return s.MembersWithCallings }, true)))
	mux.HandleFunc("GET /mls/mbr/services/orgs/members-without-callings", s.authed(s.report(func() any { return s.MembersWithoutCallings }, true)))
	mux.HandleFunc("GET /directory/services/web/v3.0/photo/url/{ids}/individual", s.authed(s.handlePhotoLookup))
	mux.HandleFunc("GET /photos/{file}", s.authed(s.handlePhoto))

	s.httpServer = httptest.NewServer(mux)
	s.URL = s.httpServer.URL
	return s
}

func (s *Server) Close() {
	s.httpServer.Close()
}

func (s *Server) count(path string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requests[path]++
}

// Requests is the number of requests made to a path, including rejected ones.
func (s *Server) Requests(path string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.requests[path]
}

// LoginPosts is the number of times credentials were submitted.
func (s *Server) LoginPosts() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loginPosts
}

// Lookups returns the ids of every photo lookup in the order they were made.
func (s *Server) Lookups() [][]int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([][]int64, len(s.lookups))
	copy(out, s.lookups)
	return out
}

// Downloads returns the member ids of every photo download.
func (s *Server) Downloads() []int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]int64, len(s.downloads))
	copy(out, s.downloads)
	return out
}

// ReportQuery is the raw query string of the last request to a report path.
func (s *Server) ReportQuery(path string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reportQuery[path]
}

// PhotoPath is the path a member's photo is served from.
func PhotoPath(id int64) string {
	return fmt.Sprintf("/photos/%d.jpg", id)
}

func (s *Server) handleLoginPage(w http.ResponseWriter, r *http.Request) {
	s.count(r.URL.Path)
	s.mu.Lock()
	s.loginGets++
	s.mu.Unlock()

	http.SetCookie(w, &http.Cookie{Name: sessionCookie, Value: "1", Path: "/"})
	w.Header().Set("content-type", "text/html")
	fmt.Fprint(w, `<html><body><form method="post"><input name="IDToken1"><input name="IDToken2"></form></body></html>`)
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	s.count(r.URL.Path)
	s.mu.Lock()
	s.loginPosts++
	s.mu.Unlock()

	if _, err := r.Cookie(sessionCookie); err != nil {
		http.Error(w, "no session", http.StatusBadRequest)
		return
	}
	err := r.ParseForm()
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if r.PostForm.Get("IDButton") != "Log In" ||
		r.PostForm.Get("IDToken1") != s.Username ||
		r.PostForm.Get("IDToken2") != s.Password {
		http.Error(w, "Authentication failed", http.StatusUnauthorized)
		return
	}

	http.SetCookie(w, &http.Cookie{Name: authCookie, Value: "1", Path: "/"})
	fmt.Fprint(w, "logged in")
}

func (s *Server) authed(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.count(r.URL.Path)
		if _, err := r.Cookie(authCookie); err != nil {
			http.Error(w, "not logged in", http.StatusForbidden)
			return
		}
		next(w, r)
	}
}

func (s *Server) handleMemberListPage(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("content-type", "text/html")
	fmt.Fprint(w, `<html><head><title>Member List</title>`)
	if s.UnitNumber != "" {
		fmt.Fprintf(w, "<script>\n  window.unitNumber = '%s';\n  window.lang = 'eng';\n</script>", s.UnitNumber)
	}
	fmt.Fprint(w, `</head><body><div id="app"></div></body></html>`)
}

func (s *Server) report(value func() any, requireJsonAccept bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.reportQuery[r.URL.Path] = r.URL.RawQuery
		s.acceptHeader[r.URL.Path] = r.Header.Get("accept")
		s.mu.Unlock()

		if requireJsonAccept && r.Header.Get("accept") != "application/json" {
			http.Error(w, "not acceptable", http.StatusNotAcceptable)
			return
		}
		if r.URL.Query().Get("lang") != "eng" || r.URL.Query().Get("unitNumber") != s.UnitNumber {
			http.Error(w, "<html>unknown unit</html>", http.StatusInternalServerError)
			return
		}

		v := value()
		if v == nil {
			v = []any{}
		}
		w.Header().Set("content-type", "application/json")
		json.NewEncoder(w).Encode(v)
	}
}

func (s *Server) handlePhotoLookup(w http.ResponseWriter, r *http.Request) {
	var ids []int64
	for _, part := range strings.Split(r.PathValue("ids"), ",") {
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			http.Error(w, "bad id", http.StatusBadRequest)
			return
		}
		ids = append(ids, id)
	}

	s.mu.Lock()
	s.lookups = append(s.lookups, ids)
	index := len(s.lookups)
	s.mu.Unlock()

	if index == s.MalformedLookup {
		w.Header().Set("content-type", "text/html")
		fmt.Fprint(w, "<html>Service Unavailable</html>")
		return
	}

	entries := make([]map[string]any, len(ids))
	for i, id := range ids {
		entry := map[string]any{"individualId": id}
		for _, size := range []string{"large", "medium", "original", "thumbnail"} {
			entry[size+"Uri"] = nil
			_, ok := s.Photos[id]
			_, broken := s.BrokenPhotos[id]
			if ok || broken {
				entry[size+"Uri"] = s.URL + PhotoPath(id)
			}
		}
		entries[i] = entry
	}
	w.Header().Set("content-type", "application/json")
	json.NewEncoder(w).Encode(entries)
}

func (s *Server) handlePhoto(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(strings.TrimSuffix(r.PathValue("file"), ".jpg"), 10, 64)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	s.mu.Lock()
	s.downloads = append(s.downloads, id)
	s.mu.Unlock()

	if status, ok := s.BrokenPhotos[id]; ok {
		http.Error(w, "<html>gone</html>", status)
		return
	}
	photo, ok := s.Photos[id]
	if !ok {
		http.NotFound(w, r)
		return
	}

	w.Header().Set("content-type", photo.ContentType)
	w.Write(photo.Data)
}
