// Package captcha verifies reCAPTCHA tokens with Google's siteverify endpoint.
package captcha

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/civicwatch/civicwatch/internal/application/report/humanverify"
	"github.com/civicwatch/civicwatch/internal/shared/logger"
)

const DefaultVerifyURL = "https://www.google.com/recaptcha/api/siteverify"

type siteverifyResponse struct {
	Success    bool     `json:"success"`
	Hostname   string   `json:"hostname"`
	ErrorCodes []string `json:"error-codes"`
}

// RecaptchaVerifier implements humanverify.Verifier. Only an explicit
// success=true passes; transport and decoding errors fail closed.
type RecaptchaVerifier struct {
	client    *http.Client
	secret    string
	verifyURL string
	logger    logger.Interface
}

func NewRecaptchaVerifier(secret, verifyURL string, timeout time.Duration, log logger.Interface) *RecaptchaVerifier {
	if verifyURL == "" {
		verifyURL = DefaultVerifyURL
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &RecaptchaVerifier{
		client:    &http.Client{Timeout: timeout},
		secret:    secret,
		verifyURL: verifyURL,
		logger:    log,
	}
}

func (v *RecaptchaVerifier) Verify(ctx context.Context, token, remoteIP string) error {
	if strings.TrimSpace(token) == "" {
		return fmt.Errorf("%w: empty token", humanverify.ErrVerificationFailed)
	}

	form := url.Values{
		"secret":   {v.secret},
		"response": {token},
	}
	if remoteIP != "" {
		form.Set("remoteip", remoteIP)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, v.verifyURL, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("%w: %v", humanverify.ErrVerificationFailed, err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := v.client.Do(req)
	if err != nil {
		v.logger.Warnw("recaptcha request failed", "error", err)
		return fmt.Errorf("%w: %v", humanverify.ErrVerificationFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: siteverify returned status %d", humanverify.ErrVerificationFailed, resp.StatusCode)
	}

	var body siteverifyResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return fmt.Errorf("%w: malformed siteverify response: %v", humanverify.ErrVerificationFailed, err)
	}
	if !body.Success {
		return fmt.Errorf("%w: %s", humanverify.ErrVerificationFailed, strings.Join(body.ErrorCodes, ","))
	}
	return nil
}
