package session

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// tokenResponse is the backend's reply to login and refresh calls.
type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
}

// RegisterRequest is a new-account submission.
type RegisterRequest struct {
	Username string
	Password string
	Email    string // optional, sent as null when empty
	FullName string
}

// registerPayload is the wire shape of RegisterRequest.
type registerPayload struct {
	Username string  `json:"username"`
	Password string  `json:"password"`
	Email    *string `json:"email"`
	FullName string  `json:"full_name"`
}

func (r RegisterRequest) payload() registerPayload {
	p := registerPayload{
		Username: r.Username,
		Password: r.Password,
		FullName: r.FullName,
	}
	if r.Email != "" {
		p.Email = &r.Email
	}
	return p
}

// readErrorMessage extracts the {"detail": "..."} message from an error
// response, falling back to a generic text with the status code. The body
// is consumed but not closed.
func readErrorMessage(resp *http.Response) string {
	var body struct {
		Detail string `json:"detail"`
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err == nil {
		_ = json.Unmarshal(data, &body)
	}
	if body.Detail != "" {
		return body.Detail
	}
	return fmt.Sprintf("request failed (%d)", resp.StatusCode)
}
