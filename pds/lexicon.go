// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package pds

import (
	"errors"
	"fmt"
	"time"

	"github.com/bureau-foundation/rpds/lib/ref"
)

// Procedure inputs decode from JSON or CBOR bodies. encoding/json does
// not enforce presence, so each input's Validate reports missing
// required fields; a Validate error becomes InvalidRequest.

// DeleteAccountInput is the body of com.atproto.admin.deleteAccount.
type DeleteAccountInput struct {
	DID ref.DID `json:"did" cbor:"did"`
}

func (i *DeleteAccountInput) Validate() error { return requireDID("did", i.DID) }

// AccountInvitesInput is the body of com.atproto.admin.disableAccountInvites
// and com.atproto.admin.enableAccountInvites.
type AccountInvitesInput struct {
	Account ref.DID `json:"account" cbor:"account"`
	Note    string  `json:"note,omitempty" cbor:"note,omitempty"`
}

func (i *AccountInvitesInput) Validate() error { return requireDID("account", i.Account) }

// DisableInviteCodesInput is the body of com.atproto.admin.disableInviteCodes.
type DisableInviteCodesInput struct {
	Codes    []string `json:"codes,omitempty" cbor:"codes,omitempty"`
	Accounts []string `json:"accounts,omitempty" cbor:"accounts,omitempty"`
}

// SendEmailInput is the body of com.atproto.admin.sendEmail.
type SendEmailInput struct {
	RecipientDID ref.DID `json:"recipientDid" cbor:"recipientDid"`
	Content      string  `json:"content" cbor:"content"`
	Subject      *string `json:"subject,omitempty" cbor:"subject,omitempty"`
	SenderDID    ref.DID `json:"senderDid" cbor:"senderDid"`
	Comment      string  `json:"comment,omitempty" cbor:"comment,omitempty"`
}

func (i *SendEmailInput) Validate() error {
	return errors.Join(
		requireDID("recipientDid", i.RecipientDID),
		requireString("content", i.Content),
		requireDID("senderDid", i.SenderDID),
	)
}

// SendEmailOutput is the result of com.atproto.admin.sendEmail.
type SendEmailOutput struct {
	Sent bool `json:"sent"`
}

// UpdateAccountEmailInput is the body of com.atproto.admin.updateAccountEmail.
type UpdateAccountEmailInput struct {
	Account ref.ATIdentifier `json:"account" cbor:"account"`
	Email   string           `json:"email" cbor:"email"`
}

func (i *UpdateAccountEmailInput) Validate() error {
	var errs []error
	if i.Account.IsZero() {
		errs = append(errs, fmt.Errorf("account is required"))
	}
	errs = append(errs, requireString("email", i.Email))
	return errors.Join(errs...)
}

// UpdateAccountHandleInput is the body of com.atproto.admin.updateAccountHandle.
type UpdateAccountHandleInput struct {
	DID    ref.DID    `json:"did" cbor:"did"`
	Handle ref.Handle `json:"handle" cbor:"handle"`
}

func (i *UpdateAccountHandleInput) Validate() error {
	return errors.Join(requireDID("did", i.DID), requireHandle("handle", i.Handle))
}

// UpdateAccountPasswordInput is the body of com.atproto.admin.updateAccountPassword.
type UpdateAccountPasswordInput struct {
	DID      ref.DID `json:"did" cbor:"did"`
	Password string  `json:"password" cbor:"password"`
}

func (i *UpdateAccountPasswordInput) Validate() error {
	return errors.Join(requireDID("did", i.DID), requireString("password", i.Password))
}

// StatusAttr is a moderation status flag with an optional reference.
type StatusAttr struct {
	Applied bool   `json:"applied" cbor:"applied"`
	Ref     string `json:"ref,omitempty" cbor:"ref,omitempty"`
}

// SubjectStatus is the body of com.atproto.admin.updateSubjectStatus and
// the result of both subject status methods. Subject is a repo, record,
// or blob reference, carried as an open object.
type SubjectStatus struct {
	Subject     map[string]any `json:"subject" cbor:"subject"`
	Takedown    *StatusAttr    `json:"takedown,omitempty" cbor:"takedown,omitempty"`
	Deactivated *StatusAttr    `json:"deactivated,omitempty" cbor:"deactivated,omitempty"`
}

func (s *SubjectStatus) Validate() error {
	if len(s.Subject) == 0 {
		return fmt.Errorf("subject is required")
	}
	return nil
}

// SignPlcOperationInput is the body of com.atproto.identity.signPlcOperation.
// Every field is optional; omitted fields keep their current values.
type SignPlcOperationInput struct {
	Token               string         `json:"token,omitempty" cbor:"token,omitempty"`
	RotationKeys        []string       `json:"rotationKeys,omitempty" cbor:"rotationKeys,omitempty"`
	AlsoKnownAs         []string       `json:"alsoKnownAs,omitempty" cbor:"alsoKnownAs,omitempty"`
	VerificationMethods map[string]any `json:"verificationMethods,omitempty" cbor:"verificationMethods,omitempty"`
	Services            map[string]any `json:"services,omitempty" cbor:"services,omitempty"`
}

// PlcOperation wraps a signed PLC operation. It is the result of
// com.atproto.identity.signPlcOperation and the body of
// com.atproto.identity.submitPlcOperation.
type PlcOperation struct {
	Operation map[string]any `json:"operation" cbor:"operation"`
}

func (p *PlcOperation) Validate() error {
	if len(p.Operation) == 0 {
		return fmt.Errorf("operation is required")
	}
	return nil
}

// UpdateHandleInput is the body of com.atproto.identity.updateHandle.
type UpdateHandleInput struct {
	Handle ref.Handle `json:"handle" cbor:"handle"`
}

func (i *UpdateHandleInput) Validate() error { return requireHandle("handle", i.Handle) }

// Query parameters decode from the URL query string. Optional
// parameters are pointers: nil means absent.

// GetAccountInfoParams are the parameters of com.atproto.admin.getAccountInfo.
type GetAccountInfoParams struct {
	DID ref.DID `schema:"did,required"`
}

func (p *GetAccountInfoParams) Validate() error { return requireDID("did", p.DID) }

// GetAccountInfosParams are the parameters of com.atproto.admin.getAccountInfos.
// The parameter repeats: ?dids=a&dids=b.
type GetAccountInfosParams struct {
	DIDs []ref.DID `schema:"dids,required"`
}

func (p *GetAccountInfosParams) Validate() error {
	if len(p.DIDs) == 0 {
		return fmt.Errorf("dids is required")
	}
	return nil
}

// InviteCodeSort orders invite code listings.
type InviteCodeSort string

const (
	SortRecent InviteCodeSort = "recent"
	SortUsage  InviteCodeSort = "usage"
)

const (
	defaultInviteCodesLimit = 100
	maxInviteCodesLimit     = 500

	defaultSearchAccountsLimit = 50
	maxSearchAccountsLimit     = 100
)

// GetInviteCodesParams are the parameters of com.atproto.admin.getInviteCodes.
type GetInviteCodesParams struct {
	Sort   *InviteCodeSort `schema:"sort"`
	Limit  *int            `schema:"limit"`
	Cursor *string         `schema:"cursor"`
}

func (p *GetInviteCodesParams) Validate() error {
	if p.Sort != nil && *p.Sort != SortRecent && *p.Sort != SortUsage {
		return fmt.Errorf("sort must be %q or %q", SortRecent, SortUsage)
	}
	return checkLimit(p.Limit, maxInviteCodesLimit)
}

// SortOrder returns the requested order, recent when absent.
func (p GetInviteCodesParams) SortOrder() InviteCodeSort {
	if p.Sort == nil {
		return SortRecent
	}
	return *p.Sort
}

// PageLimit returns the requested page size, 100 when absent.
func (p GetInviteCodesParams) PageLimit() int {
	return limitOrDefault(p.Limit, defaultInviteCodesLimit)
}

// GetSubjectStatusParams are the parameters of com.atproto.admin.getSubjectStatus.
type GetSubjectStatusParams struct {
	DID  *ref.DID   `schema:"did"`
	URI  *ref.ATURI `schema:"uri"`
	Blob *string    `schema:"blob"`
}

func (p *GetSubjectStatusParams) Validate() error {
	if p.DID != nil && p.DID.IsZero() {
		return fmt.Errorf("did must not be empty")
	}
	if p.URI != nil && p.URI.IsZero() {
		return fmt.Errorf("uri must not be empty")
	}
	return nil
}

// SearchAccountsParams are the parameters of com.atproto.admin.searchAccounts.
type SearchAccountsParams struct {
	Email  *string `schema:"email"`
	Cursor *string `schema:"cursor"`
	Limit  *int    `schema:"limit"`
}

func (p *SearchAccountsParams) Validate() error {
	return checkLimit(p.Limit, maxSearchAccountsLimit)
}

// PageLimit returns the requested page size, 50 when absent.
func (p SearchAccountsParams) PageLimit() int {
	return limitOrDefault(p.Limit, defaultSearchAccountsLimit)
}

// ResolveHandleParams are the parameters of com.atproto.identity.resolveHandle.
type ResolveHandleParams struct {
	Handle ref.Handle `schema:"handle,required"`
}

func (p *ResolveHandleParams) Validate() error { return requireHandle("handle", p.Handle) }

// Results.

// AccountView describes one account to an administrator.
type AccountView struct {
	DID              ref.DID    `json:"did"`
	Handle           ref.Handle `json:"handle"`
	Email            string     `json:"email,omitempty"`
	IndexedAt        time.Time  `json:"indexedAt"`
	InvitesDisabled  bool       `json:"invitesDisabled,omitempty"`
	InviteNote       string     `json:"inviteNote,omitempty"`
	EmailConfirmedAt *time.Time `json:"emailConfirmedAt,omitempty"`
	DeactivatedAt    *time.Time `json:"deactivatedAt,omitempty"`
}

// AccountInfos is the result of com.atproto.admin.getAccountInfos.
type AccountInfos struct {
	Infos []AccountView `json:"infos"`
}

// InviteCodeUse records one redemption of an invite code.
type InviteCodeUse struct {
	UsedBy ref.DID   `json:"usedBy"`
	UsedAt time.Time `json:"usedAt"`
}

// InviteCode is one invite code and its redemptions.
type InviteCode struct {
	Code       string          `json:"code"`
	Available  int             `json:"available"`
	Disabled   bool            `json:"disabled"`
	ForAccount string          `json:"forAccount"`
	CreatedBy  string          `json:"createdBy"`
	CreatedAt  time.Time       `json:"createdAt"`
	Uses       []InviteCodeUse `json:"uses"`
}

// InviteCodesPage is the result of com.atproto.admin.getInviteCodes.
type InviteCodesPage struct {
	Cursor string       `json:"cursor,omitempty"`
	Codes  []InviteCode `json:"codes"`
}

// AccountsPage is the result of com.atproto.admin.searchAccounts.
type AccountsPage struct {
	Cursor   string        `json:"cursor,omitempty"`
	Accounts []AccountView `json:"accounts"`
}

// ResolveHandleOutput is the result of com.atproto.identity.resolveHandle.
type ResolveHandleOutput struct {
	DID ref.DID `json:"did"`
}

// DidCredentials is the result of com.atproto.identity.getRecommendedDidCredentials.
type DidCredentials struct {
	RotationKeys        []string       `json:"rotationKeys,omitempty"`
	AlsoKnownAs         []string       `json:"alsoKnownAs,omitempty"`
	VerificationMethods map[string]any `json:"verificationMethods,omitempty"`
	Services            map[string]any `json:"services,omitempty"`
}

// HealthStatus is the result of the _health probe.
type HealthStatus struct {
	Version string `json:"version"`
}

func requireDID(field string, did ref.DID) error {
	if did.IsZero() {
		return fmt.Errorf("%s is required", field)
	}
	return nil
}

func requireHandle(field string, handle ref.Handle) error {
	if handle.IsZero() {
		return fmt.Errorf("%s is required", field)
	}
	return nil
}

func requireString(field, value string) error {
	if value == "" {
		return fmt.Errorf("%s is required", field)
	}
	return nil
}

func checkLimit(limit *int, upper int) error {
	if limit != nil && (*limit < 1 || *limit > upper) {
		return fmt.Errorf("limit must be between 1 and %d", upper)
	}
	return nil
}

func limitOrDefault(limit *int, fallback int) int {
	if limit == nil {
		return fallback
	}
	return *limit
}

func valueOrEmpty(value *string) string {
	if value == nil {
		return ""
	}
	return *value
}
