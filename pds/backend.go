// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package pds

import (
	"context"

	"github.com/bureau-foundation/rpds/lib/ref"
	"github.com/bureau-foundation/rpds/lib/xrpc"
)

// Backend carries out the com.atproto methods once their input has been
// decoded and validated. Errors that are xrpc.Error values reach the
// client as-is; any other error becomes an opaque 500.
//
// Implementations must be safe for concurrent use. A storage-backed
// implementation is built from the server's State: it runs account SQL
// on connections from State.Database (Take/Put) and checks passwords
// with State.Hasher.Verify against the records UpdateAccountPassword
// receives.
type Backend interface {
	DeleteAccount(ctx context.Context, did ref.DID) error
	DisableAccountInvites(ctx context.Context, input AccountInvitesInput) error
	DisableInviteCodes(ctx context.Context, input DisableInviteCodesInput) error
	EnableAccountInvites(ctx context.Context, input AccountInvitesInput) error
	GetAccountInfo(ctx context.Context, did ref.DID) (AccountView, error)
	GetAccountInfos(ctx context.Context, dids []ref.DID) (AccountInfos, error)
	GetInviteCodes(ctx context.Context, sort InviteCodeSort, limit int, cursor string) (InviteCodesPage, error)
	GetSubjectStatus(ctx context.Context, params GetSubjectStatusParams) (SubjectStatus, error)
	SearchAccounts(ctx context.Context, email string, limit int, cursor string) (AccountsPage, error)
	SendEmail(ctx context.Context, input SendEmailInput) (SendEmailOutput, error)
	UpdateAccountEmail(ctx context.Context, input UpdateAccountEmailInput) error
	UpdateAccountHandle(ctx context.Context, input UpdateAccountHandleInput) error

	// UpdateAccountPassword receives the stored-hash record for the
	// new password, never the plaintext.
	UpdateAccountPassword(ctx context.Context, did ref.DID, passwordHash string) error

	UpdateSubjectStatus(ctx context.Context, status SubjectStatus) (SubjectStatus, error)
	GetRecommendedDidCredentials(ctx context.Context) (DidCredentials, error)
	RequestPlcOperationSignature(ctx context.Context) error
	ResolveHandle(ctx context.Context, handle ref.Handle) (ref.DID, error)
	SignPlcOperation(ctx context.Context, input SignPlcOperationInput) (PlcOperation, error)
	SubmitPlcOperation(ctx context.Context, operation PlcOperation) error
	UpdateHandle(ctx context.Context, handle ref.Handle) error
}

// Unimplemented answers every method with 501 not_implemented. Embed it
// in a partial Backend to serve only some methods.
type Unimplemented struct{}

var _ Backend = Unimplemented{}

func (Unimplemented) DeleteAccount(context.Context, ref.DID) error {
	return xrpc.NotImplemented(NSIDDeleteAccount)
}

func (Unimplemented) DisableAccountInvites(context.Context, AccountInvitesInput) error {
	return xrpc.NotImplemented(NSIDDisableAccountInvites)
}

func (Unimplemented) DisableInviteCodes(context.Context, DisableInviteCodesInput) error {
	return xrpc.NotImplemented(NSIDDisableInviteCodes)
}

func (Unimplemented) EnableAccountInvites(context.Context, AccountInvitesInput) error {
	return xrpc.NotImplemented(NSIDEnableAccountInvites)
}

func (Unimplemented) GetAccountInfo(context.Context, ref.DID) (AccountView, error) {
	return AccountView{}, xrpc.NotImplemented(NSIDGetAccountInfo)
}

func (Unimplemented) GetAccountInfos(context.Context, []ref.DID) (AccountInfos, error) {
	return AccountInfos{}, xrpc.NotImplemented(NSIDGetAccountInfos)
}

func (Unimplemented) GetInviteCodes(context.Context, InviteCodeSort, int, string) (InviteCodesPage, error) {
	return InviteCodesPage{}, xrpc.NotImplemented(NSIDGetInviteCodes)
}

func (Unimplemented) GetSubjectStatus(context.Context, GetSubjectStatusParams) (SubjectStatus, error) {
	return SubjectStatus{}, xrpc.NotImplemented(NSIDGetSubjectStatus)
}

func (Unimplemented) SearchAccounts(context.Context, string, int, string) (AccountsPage, error) {
	return AccountsPage{}, xrpc.NotImplemented(NSIDSearchAccounts)
}

func (Unimplemented) SendEmail(context.Context, SendEmailInput) (SendEmailOutput, error) {
	return SendEmailOutput{}, xrpc.NotImplemented(NSIDSendEmail)
}

func (Unimplemented) UpdateAccountEmail(context.Context, UpdateAccountEmailInput) error {
	return xrpc.NotImplemented(NSIDUpdateAccountEmail)
}

func (Unimplemented) UpdateAccountHandle(context.Context, UpdateAccountHandleInput) error {
	return xrpc.NotImplemented(NSIDUpdateAccountHandle)
}

func (Unimplemented) UpdateAccountPassword(context.Context, ref.DID, string) error {
	return xrpc.NotImplemented(NSIDUpdateAccountPassword)
}

func (Unimplemented) UpdateSubjectStatus(context.Context, SubjectStatus) (SubjectStatus, error) {
	return SubjectStatus{}, xrpc.NotImplemented(NSIDUpdateSubjectStatus)
}

func (Unimplemented) GetRecommendedDidCredentials(context.Context) (DidCredentials, error) {
	return DidCredentials{}, xrpc.NotImplemented(NSIDGetRecommendedDidCredentials)
}

func (Unimplemented) RequestPlcOperationSignature(context.Context) error {
	return xrpc.NotImplemented(NSIDRequestPlcOperationSignature)
}

func (Unimplemented) ResolveHandle(context.Context, ref.Handle) (ref.DID, error) {
	return ref.DID{}, xrpc.NotImplemented(NSIDResolveHandle)
}

func (Unimplemented) SignPlcOperation(context.Context, SignPlcOperationInput) (PlcOperation, error) {
	return PlcOperation{}, xrpc.NotImplemented(NSIDSignPlcOperation)
}

func (Unimplemented) SubmitPlcOperation(context.Context, PlcOperation) error {
	return xrpc.NotImplemented(NSIDSubmitPlcOperation)
}

func (Unimplemented) UpdateHandle(context.Context, ref.Handle) error {
	return xrpc.NotImplemented(NSIDUpdateHandle)
}
