// Package fakestore is an in-memory stand-in for the remote document store
// and the identity provider, served over httptest for tests.
//
//	srv := fakestore.New(t)
//	srv.AddUser("ana@example.com", "secret", "u1")
//	srv.PutDocument("products", "p1", docstore.Record{"name": "Tea", "stock": int64(3)})
//	c := client.NewHTTPClient(srv.Config(), logging.NewNop())
package fakestore

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sort"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/dmitrijs2005/gophershop/internal/client/client"
	"github.com/dmitrijs2005/gophershop/internal/client/docstore"
)

const (
	documentsPrefix = "/documents/"
	authPrefix      = "/v1/accounts:"
	namePrefix      = "projects/test/databases/(default)/documents/"
)

var signingKey = []byte("fakestore")

// Request is one request seen by the server.
type Request struct {
	Method string
	Path   string
	Query  map[string][]string
	Header http.Header
	Body   string
}

type account struct {
	uid      string
	password string
}

type failure struct {
	status  int
	message string
}

// Server is the fake. All methods are safe for concurrent use.
type Server struct {
	srv *httptest.Server

	mu       sync.Mutex
	docs     map[string]map[string]map[string]docstore.Value
	accounts map[string]account
	failures map[string]failure
	requests []Request
	resets   []string
	pageSize int
}

// New starts a server that is closed when the test ends.
func New(t testing.TB) *Server {
	s := &Server{
		docs:     make(map[string]map[string]map[string]docstore.Value),
		accounts: make(map[string]account),
		failures: make(map[string]failure),
	}
	s.srv = httptest.NewServer(http.HandlerFunc(s.serve))
	t.Cleanup(s.srv.Close)
	return s
}

func (s *Server) URL() string { return s.srv.URL }

// Config points a client.HTTPClient at the server.
func (s *Server) Config() client.Config {
	return client.Config{
		DocumentsBaseURL: s.srv.URL + strings.TrimSuffix(documentsPrefix, "/"),
		AuthBaseURL:      s.srv.URL + "/v1",
		APIKey:           "test-key",
		Timeout:          5 * time.Second,
	}
}

// SetPageSize splits list responses into pages of n documents. Zero
// disables paging.
func (s *Server) SetPageSize(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pageSize = n
}

// AddUser registers an account with the identity provider.
func (s *Server) AddUser(email, password, uid string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accounts[email] = account{uid: uid, password: password}
}

// UserID returns the uid of a registered email.
func (s *Server) UserID(email string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.accounts[email]
	return a.uid, ok
}

// PasswordResets lists the emails a reset was requested for.
func (s *Server) PasswordResets() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.resets...)
}

// PutDocument stores rec under collection/id, replacing any previous document.
func (s *Server) PutDocument(collection, id string, rec docstore.Record) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.collection(collection)[id] = docstore.Encode(rec)
}

// PutRawDocument stores wire fields as-is.
func (s *Server) PutRawDocument(collection, id string, fields map[string]docstore.Value) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.collection(collection)[id] = fields
}

// Document returns the decoded document at collection/id.
func (s *Server) Document(collection, id string) (docstore.Record, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fields, ok := s.docs[collection][id]
	if !ok {
		return nil, false
	}
	return docstore.Decode(s.document(collection, id, fields))
}

// Documents returns the ids of a collection, sorted.
func (s *Server) Documents(collection string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := make([]string, 0, len(s.docs[collection]))
	for id := range s.docs[collection] {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Fail makes every request with method to path (relative to the documents
// root, e.g. "products/p2", or an auth method such as "signInWithPassword")
// answer status with message until ClearFailures.
func (s *Server) Fail(method, path string, status int, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[method+" "+path] = failure{status: status, message: message}
}

func (s *Server) ClearFailures() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures = make(map[string]failure)
}

// Requests returns every request seen so far.
func (s *Server) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Request(nil), s.requests...)
}

// RequestCount counts requests with method to a path under the documents
// root or the auth root.
func (s *Server) RequestCount(method, path string) int {
	n := 0
	for _, r := range s.Requests() {
		if r.Method == method && r.Path == path {
			n++
		}
	}
	return n
}

// IssueToken mints an identity token for uid that expires at exp.
func IssueToken(uid, email string, exp time.Time) string {
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": uid,
		"sub":     uid,
		"email":   email,
		"exp":     exp.Unix(),
	})
	signed, err := tok.SignedString(signingKey)
	if err != nil {
		panic(err)
	}
	return signed
}

func (s *Server) collection(name string) map[string]map[string]docstore.Value {
	c, ok := s.docs[name]
	if !ok {
		c = make(map[string]map[string]docstore.Value)
		s.docs[name] = c
	}
	return c
}

func (s *Server) document(collection, id string, fields map[string]docstore.Value) *docstore.Document {
	cp := make(map[string]docstore.Value, len(fields))
	for k, v := range fields {
		cp[k] = v
	}
	return &docstore.Document{Name: namePrefix + collection + "/" + id, Fields: cp}
}

func (s *Server) serve(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var path string
	switch {
	case strings.HasPrefix(r.URL.Path, documentsPrefix):
		path = strings.TrimPrefix(r.URL.Path, documentsPrefix)
	case strings.HasPrefix(r.URL.Path, authPrefix):
		path = strings.TrimPrefix(r.URL.Path, authPrefix)
	default:
		writeError(w, http.StatusNotFound, "unknown endpoint")
		return
	}

	s.mu.Lock()
	s.requests = append(s.requests, Request{
		Method: r.Method,
		Path:   path,
		Query:  r.URL.Query(),
		Header: r.Header.Clone(),
		Body:   string(body),
	})
	f, failed := s.failures[r.Method+" "+path]
	s.mu.Unlock()

	if failed {
		writeError(w, f.status, f.message)
		return
	}

	if strings.HasPrefix(r.URL.Path, authPrefix) {
		s.serveAuth(w, path, body)
		return
	}
	s.serveDocuments(w, r, path, body)
}

func (s *Server) serveDocuments(w http.ResponseWriter, r *http.Request, path string, body []byte) {
	collection, id, _ := strings.Cut(path, "/")

	s.mu.Lock()
	defer s.mu.Unlock()

	switch {
	case r.Method == http.MethodGet && id == "":
		s.list(w, r, collection)

	case r.Method == http.MethodGet:
		fields, ok := s.docs[collection][id]
		if !ok {
			writeError(w, http.StatusNotFound, fmt.Sprintf("Document %s%s not found.", namePrefix, path))
			return
		}
		writeJSON(w, http.StatusOK, s.document(collection, id, fields))

	case r.Method == http.MethodPost && id == "":
		var in docstore.Document
		if err := json.Unmarshal(body, &in); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		id = uuid.NewString()
		s.collection(collection)[id] = in.Fields
		writeJSON(w, http.StatusOK, s.document(collection, id, in.Fields))

	case r.Method == http.MethodPatch && id != "":
		var in docstore.Document
		if err := json.Unmarshal(body, &in); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		mask := r.URL.Query()["updateMask.fieldPaths"]
		fields, ok := s.docs[collection][id]
		if !ok || len(mask) == 0 {
			fields = make(map[string]docstore.Value)
		}
		if len(mask) == 0 {
			for k, v := range in.Fields {
				fields[k] = v
			}
		}
		for _, k := range mask {
			if v, ok := in.Fields[k]; ok {
				fields[k] = v
			} else {
				delete(fields, k)
			}
		}
		s.collection(collection)[id] = fields
		writeJSON(w, http.StatusOK, s.document(collection, id, fields))

	case r.Method == http.MethodDelete && id != "":
		delete(s.docs[collection], id)
		writeJSON(w, http.StatusOK, struct{}{})

	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (s *Server) list(w http.ResponseWriter, r *http.Request, collection string) {
	ids := make([]string, 0, len(s.docs[collection]))
	for id := range s.docs[collection] {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	start, _ := strconv.Atoi(r.URL.Query().Get("pageToken"))
	if start > len(ids) {
		start = len(ids)
	}
	end := len(ids)
	if s.pageSize > 0 && start+s.pageSize < end {
		end = start + s.pageSize
	}

	// an empty collection answers {} like the real store
	var resp docstore.ListResponse
	for _, id := range ids[start:end] {
		resp.Documents = append(resp.Documents, *s.document(collection, id, s.docs[collection][id]))
	}
	if end < len(ids) {
		resp.NextPageToken = strconv.Itoa(end)
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) serveAuth(w http.ResponseWriter, method string, body []byte) {
	var in struct {
		Email       string `json:"email"`
		Password    string `json:"password"`
		RequestType string `json:"requestType"`
	}
	if err := json.Unmarshal(body, &in); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	switch method {
	case "signInWithPassword":
		a, ok := s.accounts[in.Email]
		switch {
		case !ok:
			writeError(w, http.StatusBadRequest, "EMAIL_NOT_FOUND")
		case a.password != in.Password:
			writeError(w, http.StatusBadRequest, "INVALID_PASSWORD")
		default:
			s.writeAuthResult(w, a.uid, in.Email)
		}

	case "signUp":
		if _, ok := s.accounts[in.Email]; ok {
			writeError(w, http.StatusBadRequest, "EMAIL_EXISTS")
			return
		}
		if len(in.Password) < 6 {
			writeError(w, http.StatusBadRequest, "WEAK_PASSWORD : Password should be at least 6 characters")
			return
		}
		uid := strings.ReplaceAll(uuid.NewString(), "-", "")
		s.accounts[in.Email] = account{uid: uid, password: in.Password}
		s.writeAuthResult(w, uid, in.Email)

	case "sendOobCode":
		if _, ok := s.accounts[in.Email]; !ok || in.RequestType != "PASSWORD_RESET" {
			writeError(w, http.StatusBadRequest, "EMAIL_NOT_FOUND")
			return
		}
		s.resets = append(s.resets, in.Email)
		writeJSON(w, http.StatusOK, map[string]string{"email": in.Email})

	default:
		writeError(w, http.StatusNotFound, "unknown auth method")
	}
}

func (s *Server) writeAuthResult(w http.ResponseWriter, uid, email string) {
	writeJSON(w, http.StatusOK, client.AuthResult{
		LocalID:      uid,
		Email:        email,
		IDToken:      IssueToken(uid, email, time.Now().Add(time.Hour)),
		RefreshToken: "refresh-" + uid,
		ExpiresIn:    "3600",
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	var body struct {
		Error struct {
			Code    int    `json:"code"`
			Message string `json:"message"`
			Status  string `json:"status"`
		} `json:"error"`
	}
	body.Error.Code = status
	body.Error.Message = message
	body.Error.Status = strings.ToUpper(strings.ReplaceAll(http.StatusText(status), " ", "_"))
	writeJSON(w, status, body)
}
