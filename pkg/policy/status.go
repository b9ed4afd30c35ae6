/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package policy

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/go-jose/go-jose/v3/jwt"
	"github.com/samber/lo"
	"github.com/tidwall/gjson"
	"github.com/trustbloc/logutil-go/pkg/log"

	"github.com/trustbloc/vp-verifier/pkg/doc/statuslist"
	"github.com/trustbloc/vp-verifier/pkg/verifier/validator"
)

const (
	maxStatusListSize = 16 << 20

	mediaTypeStatusListJWT = "application/statuslist+jwt"
	mediaTypeVC            = "application/vc+ld+json, application/vc+jwt, application/json"

	bitstringStatusListEntry = "BitstringStatusListEntry"
	statusList2021Entry      = "StatusList2021Entry"
)

type statusArgs struct {
	// Value is the expected status. Defaults to 0, the valid status of both list families.
	Value uint8 `json:"value"`
	// Purpose selects a W3C entry by statusPurpose when a credential carries several.
	Purpose string `json:"purpose,omitempty"`
}

// statusEntry locates one status of a credential in a status list.
type statusEntry struct {
	token      bool
	uri        string
	index      int
	statusSize int
	purpose    string
}

// StatusListPolicy fetches the status list a credential points to and compares its status with
// an expected value. It reads IETF Token Status List references ("status.status_list") and W3C
// Bitstring or StatusList2021 entries ("credentialStatus").
type StatusListPolicy struct {
	name     string
	withArgs bool
	client   httpClient
	keys     *validator.IssuerKeys
	now      clock
}

// NewRevokedStatusListPolicy returns the "revoked-status-list" policy: the status must be 0.
func NewRevokedStatusListPolicy(client httpClient, keys *validator.IssuerKeys, now clock) *StatusListPolicy {
	return &StatusListPolicy{name: "revoked-status-list", client: client, keys: keys, now: now}
}

// NewCredentialStatusPolicy returns the "credential-status" policy, which takes the expected
// status value and an optional purpose as arguments.
func NewCredentialStatusPolicy(client httpClient, keys *validator.IssuerKeys, now clock) *StatusListPolicy {
	return &StatusListPolicy{name: "credential-status", withArgs: true, client: client, keys: keys, now: now}
}

func (p *StatusListPolicy) Name() string  { return p.name }
func (*StatusListPolicy) Scopes() []Scope { return vcOnly }

func (p *StatusListPolicy) Run(ctx context.Context, args json.RawMessage, in *Input) (interface{}, error) {
	var a statusArgs

	if p.withArgs && len(args) > 0 {
		if err := json.Unmarshal(args, &a); err != nil {
			return nil, fmt.Errorf("decode policy arguments: %w", err)
		}
	}

	entry, err := findStatusEntry(in.Credential.ClaimsJSON, a.Purpose)
	if err != nil {
		return nil, err
	}

	if entry == nil {
		return map[string]interface{}{"policy_available": false}, nil
	}

	list, verified, err := p.fetch(ctx, entry)
	if err != nil {
		return nil, err
	}

	status, err := list.Get(entry.index)
	if err != nil {
		return nil, fmt.Errorf("status list %s index %d: %w", entry.uri, entry.index, err)
	}

	result := map[string]interface{}{
		"uri":                     entry.uri,
		"index":                   entry.index,
		"status":                  status,
		"list_signature_verified": verified,
	}

	if entry.purpose != "" {
		result["purpose"] = entry.purpose
	}

	if status != a.Value {
		return result, fmt.Errorf("credential status is %d, expected %d", status, a.Value)
	}

	return result, nil
}

func findStatusEntry(claims []byte, purpose string) (*statusEntry, error) {
	if ref := gjson.GetBytes(claims, "status.status_list"); ref.Exists() {
		uri := ref.Get("uri").String()
		idx := ref.Get("idx")

		if uri == "" || idx.Type != gjson.Number || idx.Int() < 0 {
			return nil, fmt.Errorf("malformed status_list reference")
		}

		return &statusEntry{token: true, uri: uri, index: int(idx.Int())}, nil
	}

	cs := gjson.GetBytes(claims, "credentialStatus")
	if !cs.Exists() {
		return nil, nil //nolint:nilnil
	}

	entries := []gjson.Result{cs}
	if cs.IsArray() {
		entries = cs.Array()
	}

	for _, e := range entries {
		typ := e.Get("type").String()
		if typ != bitstringStatusListEntry && typ != statusList2021Entry {
			continue
		}

		if purpose != "" && e.Get("statusPurpose").String() != purpose {
			continue
		}

		idx, err := strconv.Atoi(e.Get("statusListIndex").String())
		if err != nil || idx < 0 {
			return nil, fmt.Errorf("malformed statusListIndex %q", e.Get("statusListIndex").String())
		}

		size := 1
		if s := e.Get("statusSize"); s.Exists() {
			size = int(s.Int())
		}

		uri := e.Get("statusListCredential").String()
		if uri == "" {
			return nil, fmt.Errorf("statusListCredential is missing")
		}

		return &statusEntry{
			uri:        uri,
			index:      idx,
			statusSize: size,
			purpose:    e.Get("statusPurpose").String(),
		}, nil
	}

	return nil, nil //nolint:nilnil
}

func (p *StatusListPolicy) fetch(ctx context.Context, entry *statusEntry) (*statuslist.List, bool, error) {
	accept := mediaTypeVC
	if entry.token {
		accept = mediaTypeStatusListJWT
	}

	body, err := p.download(ctx, entry.uri, accept)
	if err != nil {
		return nil, false, err
	}

	if entry.token {
		return p.parseTokenStatusList(ctx, entry.uri, body)
	}

	return p.parseStatusListCredential(ctx, entry, body)
}

func (p *StatusListPolicy) download(ctx context.Context, uri, accept string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, uri, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("create status list request: %w", err)
	}

	req.Header.Set("Accept", accept)

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("download status list %s: %w", uri, err)
	}

	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			logger.Warnc(ctx, "failed to close status list response body", log.WithError(closeErr))
		}
	}()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("download status list %s: status %d", uri, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxStatusListSize))
	if err != nil {
		return nil, fmt.Errorf("download status list %s: %w", uri, err)
	}

	return bytes.TrimSpace(body), nil
}

type statusListClaims struct {
	jwt.Claims
	TTL        int64 `json:"ttl,omitempty"`
	StatusList struct {
		Bits int    `json:"bits"`
		Lst  string `json:"lst"`
	} `json:"status_list"`
}

func (p *StatusListPolicy) parseTokenStatusList(
	ctx context.Context,
	uri string,
	body []byte,
) (*statuslist.List, bool, error) {
	var claims statusListClaims

	verified, err := p.readJWT(ctx, string(body), &claims)
	if err != nil {
		return nil, false, err
	}

	if claims.Subject != uri {
		return nil, false, fmt.Errorf("status list subject %q does not match %s", claims.Subject, uri)
	}

	if claims.Expiry != nil && p.now().After(claims.Expiry.Time()) {
		return nil, false, fmt.Errorf("status list %s expired", uri)
	}

	list, err := statuslist.DecodeToken(claims.StatusList.Bits, claims.StatusList.Lst)
	if err != nil {
		return nil, false, fmt.Errorf("parse status list: %w", err)
	}

	return list, verified, nil
}

func (p *StatusListPolicy) parseStatusListCredential(
	ctx context.Context,
	entry *statusEntry,
	body []byte,
) (*statuslist.List, bool, error) {
	var (
		doc      []byte
		verified bool
	)

	if len(body) > 0 && body[0] == '{' {
		// Data integrity proofs are not checked.
		doc = body
	} else {
		var claims map[string]interface{}

		var err error

		verified, err = p.readJWT(ctx, string(body), &claims)
		if err != nil {
			return nil, false, err
		}

		doc, err = json.Marshal(lo.ValueOr(claims, "vc", interface{}(claims)))
		if err != nil {
			return nil, false, fmt.Errorf("parse status list: %w", err)
		}
	}

	encoded := gjson.GetBytes(doc, "credentialSubject.encodedList").String()
	if encoded == "" {
		return nil, false, fmt.Errorf("parse status list: encodedList is missing")
	}

	if entry.purpose != "" {
		if listPurpose := gjson.GetBytes(doc, "credentialSubject.statusPurpose").String(); listPurpose != "" &&
			listPurpose != entry.purpose {
			return nil, false, fmt.Errorf("status list purpose %s does not match %s", listPurpose, entry.purpose)
		}
	}

	list, err := statuslist.DecodeBitstring(entry.statusSize, encoded)
	if err != nil {
		return nil, false, fmt.Errorf("parse status list: %w", err)
	}

	return list, verified, nil
}

// readJWT decodes the claims of a signed status list. The signature is checked against the
// issuer keys when they are configured.
func (p *StatusListPolicy) readJWT(ctx context.Context, compact string, out interface{}) (bool, error) {
	tok, err := jwt.ParseSigned(compact)
	if err != nil {
		return false, fmt.Errorf("parse status list: %w", err)
	}

	if p.keys == nil {
		if err = tok.UnsafeClaimsWithoutVerification(out); err != nil {
			return false, fmt.Errorf("parse status list: %w", err)
		}

		return false, nil
	}

	var unverified jwt.Claims
	if err = tok.UnsafeClaimsWithoutVerification(&unverified); err != nil {
		return false, fmt.Errorf("parse status list: %w", err)
	}

	key, err := p.keys.Key(ctx, tok.Headers[0], unverified.Issuer, p.now())
	if err != nil {
		return false, fmt.Errorf("status list key: %w", err)
	}

	if err = tok.Claims(key, out); err != nil {
		return false, fmt.Errorf("status list signature: %w", err)
	}

	return true, nil
}
