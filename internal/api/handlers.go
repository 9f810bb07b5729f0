package api

import (
	"encoding/json"
	"net/http"

	"github.com/ternarybob/calc/pkg/calc"
)

// version is set via -ldflags at build time
var version = "dev"

// SetVersion sets the version string (called from main).
func SetVersion(v string) {
	version = v
}

// HealthResponse is the response for /health.
type HealthResponse struct {
	Status string `json:"status"`
}

// VersionResponse is the response for /version.
type VersionResponse struct {
	Version string `json:"version"`
	Service string `json:"service"`
}

// ErrorResponse is the standard error response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// KeysRequest is the request body for /calculator/keys.
type KeysRequest struct {
	Keys []string `json:"keys"`
}

// DigitRequest is the request body for /calculator/digits.
type DigitRequest struct {
	Digit string `json:"digit"`
}

// OperationRequest is the request body for /calculator/operations.
type OperationRequest struct {
	Operator string `json:"operator"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{Status: "ok"})
}

func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, VersionResponse{
		Version: version,
		Service: "calc",
	})
}

func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.pad.Snapshot())
}

func (s *Server) handleKeys(w http.ResponseWriter, r *http.Request) {
	var req KeysRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if len(req.Keys) == 0 {
		writeError(w, http.StatusBadRequest, "Keys are required")
		return
	}

	snap, err := s.pad.PressAll(req.Keys)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (s *Server) handleDigit(w http.ResponseWriter, r *http.Request) {
	var req DigitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	digit, err := calc.ParseDigit(req.Digit)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, s.pad.Do(func(c *calc.Calculator) {
		c.AppendNumber(digit)
	}))
}

func (s *Server) handleOperation(w http.ResponseWriter, r *http.Request) {
	var req OperationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	op, err := calc.ParseOperator(req.Operator)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, s.pad.Do(func(c *calc.Calculator) {
		c.ChooseOperation(op)
	}))
}

func (s *Server) handleCompute(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.pad.Do((*calc.Calculator).Compute))
}

func (s *Server) handleClear(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.pad.Do((*calc.Calculator).Clear))
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, ErrorResponse{Error: message})
}
