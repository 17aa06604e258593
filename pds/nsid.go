// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package pds

// Method NSIDs served under /xrpc.
const (
	NSIDDeleteAccount                = "com.atproto.admin.deleteAccount"
	NSIDDisableAccountInvites        = "com.atproto.admin.disableAccountInvites"
	NSIDDisableInviteCodes           = "com.atproto.admin.disableInviteCodes"
	NSIDEnableAccountInvites         = "com.atproto.admin.enableAccountInvites"
	NSIDGetAccountInfo               = "com.atproto.admin.getAccountInfo"
	NSIDGetAccountInfos              = "com.atproto.admin.getAccountInfos"
	NSIDGetInviteCodes               = "com.atproto.admin.getInviteCodes"
	NSIDGetSubjectStatus             = "com.atproto.admin.getSubjectStatus"
	NSIDSearchAccounts               = "com.atproto.admin.searchAccounts"
	NSIDSendEmail                    = "com.atproto.admin.sendEmail"
	NSIDUpdateAccountEmail           = "com.atproto.admin.updateAccountEmail"
	NSIDUpdateAccountHandle          = "com.atproto.admin.updateAccountHandle"
	NSIDUpdateAccountPassword        = "com.atproto.admin.updateAccountPassword"
	NSIDUpdateSubjectStatus          = "com.atproto.admin.updateSubjectStatus"
	NSIDGetRecommendedDidCredentials = "com.atproto.identity.getRecommendedDidCredentials"
	NSIDRequestPlcOperationSignature = "com.atproto.identity.requestPlcOperationSignature"
	NSIDResolveHandle                = "com.atproto.identity.resolveHandle"
	NSIDSignPlcOperation             = "com.atproto.identity.signPlcOperation"
	NSIDSubmitPlcOperation           = "com.atproto.identity.submitPlcOperation"
	NSIDUpdateHandle                 = "com.atproto.identity.updateHandle"

	// NSIDHealth is the server's own liveness probe.
	NSIDHealth = "_health"
)
