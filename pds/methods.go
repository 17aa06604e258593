// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package pds

import (
	"context"
	"fmt"

	"github.com/bureau-foundation/rpds/lib/database"
	"github.com/bureau-foundation/rpds/lib/password"
	"github.com/bureau-foundation/rpds/lib/version"
	"github.com/bureau-foundation/rpds/lib/xrpc"
)

// methods adapts the Backend to XRPC handlers. Each handler logs the
// request's identifying fields and delegates.
type methods struct {
	backend  Backend
	hasher   *password.Hasher
	database *database.Database
}

func (m *methods) register(router *xrpc.Router) {
	router.Register(NSIDDeleteAccount, xrpc.HandleBody2(m.deleteAccount))
	router.Register(NSIDDisableAccountInvites, xrpc.HandleBody2(m.disableAccountInvites))
	router.Register(NSIDDisableInviteCodes, xrpc.HandleBody2(m.disableInviteCodes))
	router.Register(NSIDEnableAccountInvites, xrpc.HandleBody2(m.enableAccountInvites))
	router.Register(NSIDGetAccountInfo, xrpc.Handle2(m.getAccountInfo))
	router.Register(NSIDGetAccountInfos, xrpc.Handle2(m.getAccountInfos))
	router.Register(NSIDGetInviteCodes, xrpc.Handle2(m.getInviteCodes))
	router.Register(NSIDGetSubjectStatus, xrpc.Handle2(m.getSubjectStatus))
	router.Register(NSIDSearchAccounts, xrpc.Handle2(m.searchAccounts))
	router.Register(NSIDSendEmail, xrpc.HandleBody2(m.sendEmail))
	router.Register(NSIDUpdateAccountEmail, xrpc.HandleBody2(m.updateAccountEmail))
	router.Register(NSIDUpdateAccountHandle, xrpc.HandleBody2(m.updateAccountHandle))
	router.Register(NSIDUpdateAccountPassword, xrpc.HandleBody2(m.updateAccountPassword))
	router.Register(NSIDUpdateSubjectStatus, xrpc.HandleBody2(m.updateSubjectStatus))
	router.Register(NSIDGetRecommendedDidCredentials, xrpc.Handle1(m.getRecommendedDidCredentials))
	router.Register(NSIDRequestPlcOperationSignature, xrpc.Handle1(m.requestPlcOperationSignature))
	router.Register(NSIDResolveHandle, xrpc.Handle2(m.resolveHandle))
	router.Register(NSIDSignPlcOperation, xrpc.HandleBody2(m.signPlcOperation))
	router.Register(NSIDSubmitPlcOperation, xrpc.HandleBody2(m.submitPlcOperation))
	router.Register(NSIDUpdateHandle, xrpc.HandleBody2(m.updateHandle))
	router.Register(NSIDHealth, xrpc.Handle1(m.health))
}

// com.atproto.admin

func (m *methods) deleteAccount(ctx context.Context, _ xrpc.MethodPost, input xrpc.Input[DeleteAccountInput]) (xrpc.Empty, error) {
	xrpc.Logger(ctx).Info("deleting account", "did", input.Value.DID.String())
	return xrpc.Empty{}, m.backend.DeleteAccount(ctx, input.Value.DID)
}

func (m *methods) disableAccountInvites(ctx context.Context, _ xrpc.MethodPost, input xrpc.Input[AccountInvitesInput]) (xrpc.Empty, error) {
	xrpc.Logger(ctx).Info("disabling account invites", "account", input.Value.Account.String())
	return xrpc.Empty{}, m.backend.DisableAccountInvites(ctx, input.Value)
}

func (m *methods) disableInviteCodes(ctx context.Context, _ xrpc.MethodPost, input xrpc.Input[DisableInviteCodesInput]) (xrpc.Empty, error) {
	xrpc.Logger(ctx).Info("disabling invite codes",
		"codes", len(input.Value.Codes),
		"accounts", len(input.Value.Accounts),
	)
	return xrpc.Empty{}, m.backend.DisableInviteCodes(ctx, input.Value)
}

func (m *methods) enableAccountInvites(ctx context.Context, _ xrpc.MethodPost, input xrpc.Input[AccountInvitesInput]) (xrpc.Empty, error) {
	xrpc.Logger(ctx).Info("enabling account invites", "account", input.Value.Account.String())
	return xrpc.Empty{}, m.backend.EnableAccountInvites(ctx, input.Value)
}

func (m *methods) getAccountInfo(ctx context.Context, _ xrpc.MethodGet, query xrpc.Query[GetAccountInfoParams]) (xrpc.JSON[AccountView], error) {
	xrpc.Logger(ctx).Debug("getting account info", "did", query.Value.DID.String())
	view, err := m.backend.GetAccountInfo(ctx, query.Value.DID)
	return xrpc.JSON[AccountView]{Value: view}, err
}

func (m *methods) getAccountInfos(ctx context.Context, _ xrpc.MethodGet, query xrpc.Query[GetAccountInfosParams]) (xrpc.JSON[AccountInfos], error) {
	xrpc.Logger(ctx).Debug("getting account infos", "dids", len(query.Value.DIDs))
	infos, err := m.backend.GetAccountInfos(ctx, query.Value.DIDs)
	return xrpc.JSON[AccountInfos]{Value: infos}, err
}

func (m *methods) getInviteCodes(ctx context.Context, _ xrpc.MethodGet, query xrpc.Query[GetInviteCodesParams]) (xrpc.JSON[InviteCodesPage], error) {
	params := query.Value
	xrpc.Logger(ctx).Debug("getting invite codes",
		"sort", string(params.SortOrder()),
		"limit", params.PageLimit(),
	)
	page, err := m.backend.GetInviteCodes(ctx, params.SortOrder(), params.PageLimit(), valueOrEmpty(params.Cursor))
	return xrpc.JSON[InviteCodesPage]{Value: page}, err
}

func (m *methods) getSubjectStatus(ctx context.Context, _ xrpc.MethodGet, query xrpc.Query[GetSubjectStatusParams]) (xrpc.JSON[SubjectStatus], error) {
	xrpc.Logger(ctx).Debug("getting subject status")
	status, err := m.backend.GetSubjectStatus(ctx, query.Value)
	return xrpc.JSON[SubjectStatus]{Value: status}, err
}

func (m *methods) searchAccounts(ctx context.Context, _ xrpc.MethodGet, query xrpc.Query[SearchAccountsParams]) (xrpc.JSON[AccountsPage], error) {
	params := query.Value
	xrpc.Logger(ctx).Debug("searching accounts", "limit", params.PageLimit())
	page, err := m.backend.SearchAccounts(ctx, valueOrEmpty(params.Email), params.PageLimit(), valueOrEmpty(params.Cursor))
	return xrpc.JSON[AccountsPage]{Value: page}, err
}

func (m *methods) sendEmail(ctx context.Context, _ xrpc.MethodPost, input xrpc.Input[SendEmailInput]) (xrpc.JSON[SendEmailOutput], error) {
	xrpc.Logger(ctx).Info("sending email",
		"recipient", input.Value.RecipientDID.String(),
		"sender", input.Value.SenderDID.String(),
	)
	output, err := m.backend.SendEmail(ctx, input.Value)
	return xrpc.JSON[SendEmailOutput]{Value: output}, err
}

func (m *methods) updateAccountEmail(ctx context.Context, _ xrpc.MethodPost, input xrpc.Input[UpdateAccountEmailInput]) (xrpc.Empty, error) {
	xrpc.Logger(ctx).Info("updating account email", "account", input.Value.Account.String())
	return xrpc.Empty{}, m.backend.UpdateAccountEmail(ctx, input.Value)
}

func (m *methods) updateAccountHandle(ctx context.Context, _ xrpc.MethodPost, input xrpc.Input[UpdateAccountHandleInput]) (xrpc.Empty, error) {
	xrpc.Logger(ctx).Info("updating account handle",
		"did", input.Value.DID.String(),
		"handle", input.Value.Handle.String(),
	)
	return xrpc.Empty{}, m.backend.UpdateAccountHandle(ctx, input.Value)
}

func (m *methods) updateAccountPassword(ctx context.Context, _ xrpc.MethodPost, input xrpc.Input[UpdateAccountPasswordInput]) (xrpc.Empty, error) {
	xrpc.Logger(ctx).Info("updating account password", "did", input.Value.DID.String())
	hash, err := m.hasher.Hash([]byte(input.Value.Password))
	if err != nil {
		return xrpc.Empty{}, fmt.Errorf("hashing password: %w", err)
	}
	return xrpc.Empty{}, m.backend.UpdateAccountPassword(ctx, input.Value.DID, hash)
}

func (m *methods) updateSubjectStatus(ctx context.Context, _ xrpc.MethodPost, input xrpc.Input[SubjectStatus]) (xrpc.JSON[SubjectStatus], error) {
	xrpc.Logger(ctx).Info("updating subject status",
		"takedown", input.Value.Takedown != nil,
		"deactivated", input.Value.Deactivated != nil,
	)
	status, err := m.backend.UpdateSubjectStatus(ctx, input.Value)
	return xrpc.JSON[SubjectStatus]{Value: status}, err
}

// com.atproto.identity

func (m *methods) getRecommendedDidCredentials(ctx context.Context, _ xrpc.MethodGet) (xrpc.JSON[DidCredentials], error) {
	credentials, err := m.backend.GetRecommendedDidCredentials(ctx)
	return xrpc.JSON[DidCredentials]{Value: credentials}, err
}

func (m *methods) requestPlcOperationSignature(ctx context.Context, _ xrpc.MethodPost) (xrpc.Empty, error) {
	xrpc.Logger(ctx).Info("requesting plc operation signature")
	return xrpc.Empty{}, m.backend.RequestPlcOperationSignature(ctx)
}

func (m *methods) resolveHandle(ctx context.Context, _ xrpc.MethodGet, query xrpc.Query[ResolveHandleParams]) (xrpc.JSON[ResolveHandleOutput], error) {
	xrpc.Logger(ctx).Debug("resolving handle", "handle", query.Value.Handle.String())
	did, err := m.backend.ResolveHandle(ctx, query.Value.Handle)
	return xrpc.JSON[ResolveHandleOutput]{Value: ResolveHandleOutput{DID: did}}, err
}

func (m *methods) signPlcOperation(ctx context.Context, _ xrpc.MethodPost, input xrpc.Input[SignPlcOperationInput]) (xrpc.JSON[PlcOperation], error) {
	xrpc.Logger(ctx).Info("signing plc operation")
	operation, err := m.backend.SignPlcOperation(ctx, input.Value)
	return xrpc.JSON[PlcOperation]{Value: operation}, err
}

func (m *methods) submitPlcOperation(ctx context.Context, _ xrpc.MethodPost, input xrpc.Input[PlcOperation]) (xrpc.Empty, error) {
	xrpc.Logger(ctx).Info("submitting plc operation")
	return xrpc.Empty{}, m.backend.SubmitPlcOperation(ctx, input.Value)
}

func (m *methods) updateHandle(ctx context.Context, _ xrpc.MethodPost, input xrpc.Input[UpdateHandleInput]) (xrpc.Empty, error) {
	xrpc.Logger(ctx).Info("updating handle", "handle", input.Value.Handle.String())
	return xrpc.Empty{}, m.backend.UpdateHandle(ctx, input.Value.Handle)
}

// health reports the server version once the database answers.
func (m *methods) health(ctx context.Context, _ xrpc.MethodGet) (xrpc.JSON[HealthStatus], error) {
	if err := m.database.Ping(ctx); err != nil {
		return xrpc.JSON[HealthStatus]{}, fmt.Errorf("health check: %w", err)
	}
	return xrpc.JSON[HealthStatus]{Value: HealthStatus{Version: version.Short()}}, nil
}
