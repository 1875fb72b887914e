package esmsg

// AuthenticationType discriminates the sub-payload of an authentication
// event.
type AuthenticationType uint32

const (
	AuthenticationOD AuthenticationType = iota
	AuthenticationTouchID
	AuthenticationToken
	AuthenticationAutoUnlock
)

// Authentication reports an authentication attempt. The concrete data
// lives in a sub-payload selected by Type; accessors for the wrong arm
// return false.
type Authentication struct{ payload }

// Success reports whether the attempt succeeded.
func (e Authentication) Success() bool { return e.boolf(0) }

// Type discriminates which sub-payload is carried.
func (e Authentication) Type() AuthenticationType { return AuthenticationType(e.u32f(1)) }

func (e Authentication) sub() payload {
	return payload{r: e.r, off: requireOff(uint32(e.slot(2)), "authentication data")}
}

// OD returns the OpenDirectory sub-payload, when Type selects it.
func (e Authentication) OD() (AuthenticationODData, bool) {
	if e.Type() != AuthenticationOD {
		return AuthenticationODData{}, false
	}
	return AuthenticationODData{e.sub()}, true
}

// TouchID returns the TouchID sub-payload, when Type selects it.
func (e Authentication) TouchID() (AuthenticationTouchIDData, bool) {
	if e.Type() != AuthenticationTouchID {
		return AuthenticationTouchIDData{}, false
	}
	return AuthenticationTouchIDData{e.sub()}, true
}

// Token returns the smart-card token sub-payload, when Type selects it.
func (e Authentication) Token() (AuthenticationTokenData, bool) {
	if e.Type() != AuthenticationToken {
		return AuthenticationTokenData{}, false
	}
	return AuthenticationTokenData{e.sub()}, true
}

// AutoUnlock returns the auto-unlock sub-payload, when Type selects it.
func (e Authentication) AutoUnlock() (AuthenticationAutoUnlockData, bool) {
	if e.Type() != AuthenticationAutoUnlock {
		return AuthenticationAutoUnlockData{}, false
	}
	return AuthenticationAutoUnlockData{e.sub()}, true
}

// AuthenticationODData is an authentication against an OpenDirectory node.
type AuthenticationODData struct{ payload }

// Instigator is the process that asked for the authentication.
func (d AuthenticationODData) Instigator() Process { return d.proc(0, "authentication instigator") }

// RecordType is the OD record type authenticated against.
func (d AuthenticationODData) RecordType() string { return d.strf(1) }

// RecordName is the OD record name.
func (d AuthenticationODData) RecordName() string { return d.strf(2) }

// NodeName is the OD node.
func (d AuthenticationODData) NodeName() string { return d.strf(3) }

// DBPath is the local database path for local nodes, empty otherwise.
func (d AuthenticationODData) DBPath() string { return d.strf(4) }

// TouchIDMode distinguishes verification from identification.
type TouchIDMode uint32

// AuthenticationTouchIDData is a TouchID authentication.
type AuthenticationTouchIDData struct{ payload }

// Instigator is the process that asked for the authentication.
func (d AuthenticationTouchIDData) Instigator() Process {
	return d.proc(0, "authentication instigator")
}

// Mode is the TouchID operation mode.
func (d AuthenticationTouchIDData) Mode() TouchIDMode { return TouchIDMode(d.u32f(1)) }

// UID is the user the fingerprint matched. Only present when the kernel
// set the has_uid discriminant; checked before the union arm is read.
func (d AuthenticationTouchIDData) UID() (uint32, bool) {
	if !d.boolf(2) {
		return 0, false
	}
	return d.u32f(3), true
}

// AuthenticationTokenData is a smart-card token authentication.
type AuthenticationTokenData struct{ payload }

// Instigator is the process that asked for the authentication.
func (d AuthenticationTokenData) Instigator() Process {
	return d.proc(0, "authentication instigator")
}

// PubkeyHash is the token's public key hash.
func (d AuthenticationTokenData) PubkeyHash() string { return d.strf(1) }

// TokenID is the token identifier.
func (d AuthenticationTokenData) TokenID() string { return d.strf(2) }

// KerberosPrincipal is the principal, when one is associated.
func (d AuthenticationTokenData) KerberosPrincipal() string { return d.strf(3) }

// AutoUnlockType distinguishes machine unlock from auth-prompt unlock.
type AutoUnlockType uint32

// AuthenticationAutoUnlockData is an Apple Watch auto-unlock.
type AuthenticationAutoUnlockData struct{ payload }

// Username is the account being unlocked.
func (d AuthenticationAutoUnlockData) Username() string { return d.strf(0) }

// Type is the unlock flavor.
func (d AuthenticationAutoUnlockData) Type() AutoUnlockType { return AutoUnlockType(d.u32f(1)) }

// XPMalwareDetected reports XProtect finding malware.
type XPMalwareDetected struct{ payload }

// SignatureVersion is the XProtect signature version that matched.
func (e XPMalwareDetected) SignatureVersion() string { return e.strf(0) }

// MalwareIdentifier names the detected malware.
func (e XPMalwareDetected) MalwareIdentifier() string { return e.strf(1) }

// IncidentIdentifier correlates detection and remediation events.
func (e XPMalwareDetected) IncidentIdentifier() string { return e.strf(2) }

// DetectedPath is where the malware was found.
func (e XPMalwareDetected) DetectedPath() string { return e.strf(3) }

// XPMalwareRemediated reports XProtect acting on detected malware.
type XPMalwareRemediated struct{ payload }

// SignatureVersion is the signature version that drove the remediation.
func (e XPMalwareRemediated) SignatureVersion() string { return e.strf(0) }

// MalwareIdentifier names the malware.
func (e XPMalwareRemediated) MalwareIdentifier() string { return e.strf(1) }

// IncidentIdentifier correlates with the detection event.
func (e XPMalwareRemediated) IncidentIdentifier() string { return e.strf(2) }

// ActionType describes the remediation taken.
func (e XPMalwareRemediated) ActionType() string { return e.strf(3) }

// Success reports whether remediation succeeded.
func (e XPMalwareRemediated) Success() bool { return e.boolf(4) }

// ResultDescription elaborates on the outcome.
func (e XPMalwareRemediated) ResultDescription() string { return e.strf(5) }

// RemediatedPath is the path acted on.
func (e XPMalwareRemediated) RemediatedPath() string { return e.strf(6) }

// RemediatedProcessAuditToken identifies the terminated process, when the
// remediation killed one.
func (e XPMalwareRemediated) RemediatedProcessAuditToken() (AuditToken, bool) {
	return e.optToken(7)
}

// GraphicalSessionID identifies a loginwindow graphical session.
type GraphicalSessionID uint32

// lwSession is the shared shape of the loginwindow session events.
type lwSession struct{ payload }

// Username is the session's user.
func (e lwSession) Username() string { return e.strf(0) }

// GraphicalSessionID identifies the session.
func (e lwSession) GraphicalSessionID() GraphicalSessionID {
	return GraphicalSessionID(e.u32f(1))
}

// LWSessionLogin reports a loginwindow session login.
type LWSessionLogin struct{ lwSession }

// LWSessionLogout reports a loginwindow session logout.
type LWSessionLogout struct{ lwSession }

// LWSessionLock reports a loginwindow session locking.
type LWSessionLock struct{ lwSession }

// LWSessionUnlock reports a loginwindow session unlocking.
type LWSessionUnlock struct{ lwSession }

// AddressType classifies the source address of a remote session.
type AddressType uint32

const (
	AddressNone AddressType = iota
	AddressIPv4
	AddressIPv6
	AddressNamedSocket
)

// ScreensharingAttach reports a screen-sharing session attaching.
type ScreensharingAttach struct{ payload }

// Success reports whether the attach succeeded.
func (e ScreensharingAttach) Success() bool { return e.boolf(0) }

// SourceAddressType classifies SourceAddress.
func (e ScreensharingAttach) SourceAddressType() AddressType { return AddressType(e.u32f(1)) }

// SourceAddress is the viewer's address, empty when unavailable.
func (e ScreensharingAttach) SourceAddress() string { return e.strf(2) }

// ViewerAppleID is the viewer's Apple ID, empty when unauthenticated.
func (e ScreensharingAttach) ViewerAppleID() string { return e.strf(3) }

// AuthenticationType describes how the viewer authenticated.
func (e ScreensharingAttach) AuthenticationType() string { return e.strf(4) }

// AuthenticationUsername is the account used to authenticate.
func (e ScreensharingAttach) AuthenticationUsername() string { return e.strf(5) }

// SessionUsername is the local account attached to.
func (e ScreensharingAttach) SessionUsername() string { return e.strf(6) }

// ExistingSession reports whether the viewer joined a running session.
func (e ScreensharingAttach) ExistingSession() bool { return e.boolf(7) }

// GraphicalSessionID identifies the session.
func (e ScreensharingAttach) GraphicalSessionID() GraphicalSessionID {
	return GraphicalSessionID(e.u32f(8))
}

// ScreensharingDetach reports a screen-sharing session detaching.
type ScreensharingDetach struct{ payload }

// SourceAddressType classifies SourceAddress.
func (e ScreensharingDetach) SourceAddressType() AddressType { return AddressType(e.u32f(0)) }

// SourceAddress is the viewer's address.
func (e ScreensharingDetach) SourceAddress() string { return e.strf(1) }

// ViewerAppleID is the viewer's Apple ID.
func (e ScreensharingDetach) ViewerAppleID() string { return e.strf(2) }

// GraphicalSessionID identifies the session.
func (e ScreensharingDetach) GraphicalSessionID() GraphicalSessionID {
	return GraphicalSessionID(e.u32f(3))
}

// OpensshLoginResult classifies sshd login outcomes.
type OpensshLoginResult uint32

// OpensshLogin reports an sshd login attempt.
type OpensshLogin struct{ payload }

// Success reports whether the login succeeded.
func (e OpensshLogin) Success() bool { return e.boolf(0) }

// ResultType details the outcome.
func (e OpensshLogin) ResultType() OpensshLoginResult { return OpensshLoginResult(e.u32f(1)) }

// SourceAddressType classifies SourceAddress.
func (e OpensshLogin) SourceAddressType() AddressType { return AddressType(e.u32f(2)) }

// SourceAddress is the client address.
func (e OpensshLogin) SourceAddress() string { return e.strf(3) }

// Username is the account logged into.
func (e OpensshLogin) Username() string { return e.strf(4) }

// UID is the account's uid, present only on success with a resolved user;
// the has_uid discriminant is checked before the union arm.
func (e OpensshLogin) UID() (uint32, bool) {
	if !e.boolf(5) {
		return 0, false
	}
	return e.u32f(6), true
}

// OpensshLogout reports an sshd session ending.
type OpensshLogout struct{ payload }

// SourceAddressType classifies SourceAddress.
func (e OpensshLogout) SourceAddressType() AddressType { return AddressType(e.u32f(0)) }

// SourceAddress is the client address.
func (e OpensshLogout) SourceAddress() string { return e.strf(1) }

// Username is the account logged out.
func (e OpensshLogout) Username() string { return e.strf(2) }

// UID is the account's uid.
func (e OpensshLogout) UID() uint32 { return e.u32f(3) }

// LoginLogin reports a login(1) attempt.
type LoginLogin struct{ payload }

// Success reports whether the login succeeded.
func (e LoginLogin) Success() bool { return e.boolf(0) }

// FailureMessage explains a failed attempt; empty on success.
func (e LoginLogin) FailureMessage() string { return e.strf(1) }

// Username is the account logged into.
func (e LoginLogin) Username() string { return e.strf(2) }

// UID is the account's uid, behind the has_uid discriminant.
func (e LoginLogin) UID() (uint32, bool) {
	if !e.boolf(3) {
		return 0, false
	}
	return e.u32f(4), true
}

// LoginLogout reports a login(1) session ending.
type LoginLogout struct{ payload }

// Username is the account logged out.
func (e LoginLogout) Username() string { return e.strf(0) }

// UID is the account's uid.
func (e LoginLogout) UID() uint32 { return e.u32f(1) }

// BTMLaunchItem describes a background task management launch item.
// Six slots.
type BTMLaunchItem struct {
	r   *Record
	off uint32
}

func (b BTMLaunchItem) slot(i int) uint64 { return b.r.u64(int(b.off) + 8*i) }

// ItemType is the launch item class (user item, app, login item, agent,
// daemon).
func (b BTMLaunchItem) ItemType() uint32 { return uint32(b.slot(0)) }

// Legacy reports whether the item comes from a legacy location.
func (b BTMLaunchItem) Legacy() bool { return b.slot(1) != 0 }

// Managed reports whether the item is under MDM management.
func (b BTMLaunchItem) Managed() bool { return b.slot(2) != 0 }

// UID is the user the item runs as.
func (b BTMLaunchItem) UID() uint32 { return uint32(b.slot(3)) }

// ItemURL is the item's location.
func (b BTMLaunchItem) ItemURL() string { return b.r.str(b.slot(4)) }

// AppURL is the bundle the item belongs to, empty when standalone.
func (b BTMLaunchItem) AppURL() string { return b.r.str(b.slot(5)) }

// BTMLaunchItemAdd reports a launch item being registered.
type BTMLaunchItemAdd struct{ payload }

// Instigator is the process that registered the item, when the kernel
// could attribute it.
func (e BTMLaunchItemAdd) Instigator() (Process, bool) { return e.optProc(0) }

// App is the application the item belongs to, when known.
func (e BTMLaunchItemAdd) App() (Process, bool) { return e.optProc(1) }

// Item describes the launch item.
func (e BTMLaunchItemAdd) Item() BTMLaunchItem {
	return BTMLaunchItem{r: e.r, off: requireOff(uint32(e.slot(2)), "btm launch item")}
}

// ExecutablePath is the item's executable.
func (e BTMLaunchItemAdd) ExecutablePath() string { return e.strf(3) }

// BTMLaunchItemRemove reports a launch item being removed.
type BTMLaunchItemRemove struct{ payload }

// Instigator is the process that removed the item, when known.
func (e BTMLaunchItemRemove) Instigator() (Process, bool) { return e.optProc(0) }

// App is the application the item belonged to, when known.
func (e BTMLaunchItemRemove) App() (Process, bool) { return e.optProc(1) }

// Item describes the removed launch item.
func (e BTMLaunchItemRemove) Item() BTMLaunchItem {
	return BTMLaunchItem{r: e.r, off: requireOff(uint32(e.slot(2)), "btm launch item")}
}
