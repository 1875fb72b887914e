package esmsg

// ProfileSource tells where an installed configuration profile came from.
type ProfileSource uint32

const (
	ProfileSourceManaged ProfileSource = 0
	ProfileSourceInstall ProfileSource = 1
)

// Profile describes a configuration profile. Six slots.
type Profile struct {
	r   *Record
	off uint32
}

func (p Profile) slot(i int) uint64 { return p.r.u64(int(p.off) + 8*i) }

// Identifier is the profile identifier.
func (p Profile) Identifier() string { return p.r.str(p.slot(0)) }

// UUID is the profile UUID.
func (p Profile) UUID() string { return p.r.str(p.slot(1)) }

// InstallSource tells how the profile arrived.
func (p Profile) InstallSource() ProfileSource { return ProfileSource(uint32(p.slot(2))) }

// Organization is the issuing organization.
func (p Profile) Organization() string { return p.r.str(p.slot(3)) }

// DisplayName is the human-readable name.
func (p Profile) DisplayName() string { return p.r.str(p.slot(4)) }

// Scope is the installation scope.
func (p Profile) Scope() string { return p.r.str(p.slot(5)) }

// ProfileAdd reports a configuration profile being installed.
type ProfileAdd struct{ payload }

// Instigator is the process installing the profile, when attributable.
func (e ProfileAdd) Instigator() (Process, bool) { return e.optProc(0) }

// IsUpdate reports whether an existing profile was updated in place.
func (e ProfileAdd) IsUpdate() bool { return e.boolf(1) }

// Profile is the installed profile.
func (e ProfileAdd) Profile() Profile {
	return Profile{r: e.r, off: requireOff(uint32(e.slot(2)), "profile")}
}

// ProfileRemove reports a configuration profile being removed.
type ProfileRemove struct{ payload }

// Instigator is the process removing the profile, when attributable.
func (e ProfileRemove) Instigator() (Process, bool) { return e.optProc(0) }

// Profile is the removed profile.
func (e ProfileRemove) Profile() Profile {
	return Profile{r: e.r, off: requireOff(uint32(e.slot(1)), "profile")}
}

// Su payload slots.
const (
	suSlotSuccess        = 0
	suSlotFailureMessage = 1
	suSlotFromUID        = 2
	suSlotFromUsername   = 3
	suSlotHasToUID       = 4
	suSlotToUID          = 5
	suSlotToUsername     = 6
	suSlotShell          = 7
	suSlotArgCount       = 8
	suSlotArgArray       = 9
	suSlotEnvCount       = 10
	suSlotEnvArray       = 11
)

// Su reports a su(1) policy decision. Most fields describe the target
// identity and are only carried on success; accessors check the success
// flag before touching them.
type Su struct{ payload }

// Success reports whether the su succeeded.
func (e Su) Success() bool { return e.boolf(suSlotSuccess) }

// FailureMessage explains a failed su; absent on success.
func (e Su) FailureMessage() (string, bool) {
	if e.Success() {
		return "", false
	}
	return e.strf(suSlotFailureMessage), true
}

// FromUID is the uid that initiated the su.
func (e Su) FromUID() uint32 { return e.u32f(suSlotFromUID) }

// FromUsername is the username that initiated the su.
func (e Su) FromUsername() string { return e.strf(suSlotFromUsername) }

// ToUID is the substituted uid; only interpretable on success when the
// kernel set the discriminant.
func (e Su) ToUID() (uint32, bool) {
	if !e.Success() || !e.boolf(suSlotHasToUID) {
		return 0, false
	}
	return e.u32f(suSlotToUID), true
}

// ToUsername is the substituted username, on success.
func (e Su) ToUsername() (string, bool) {
	if !e.Success() {
		return "", false
	}
	return e.strf(suSlotToUsername), true
}

// Shell is the shell about to run, on success.
func (e Su) Shell() (string, bool) {
	if !e.Success() {
		return "", false
	}
	return e.strf(suSlotShell), true
}

// Args iterates the shell arguments, on success; empty otherwise.
func (e Su) Args() Iter[string] {
	if !e.Success() {
		return newIter[string](0, nil)
	}
	return e.strings(suSlotArgCount, suSlotArgArray)
}

// Envs iterates the substituted environment, on success; empty otherwise.
func (e Su) Envs() Iter[string] {
	if !e.Success() {
		return newIter[string](0, nil)
	}
	return e.strings(suSlotEnvCount, suSlotEnvArray)
}

// SudoPluginType classifies the sudo plugin that rejected a command.
type SudoPluginType uint32

// SudoRejectInfo explains a rejected sudo. Three slots.
type SudoRejectInfo struct {
	r   *Record
	off uint32
}

func (i SudoRejectInfo) slot(j int) uint64 { return i.r.u64(int(i.off) + 8*j) }

// PluginName is the rejecting plugin.
func (i SudoRejectInfo) PluginName() string { return i.r.str(i.slot(0)) }

// PluginType is the rejecting plugin's class.
func (i SudoRejectInfo) PluginType() SudoPluginType { return SudoPluginType(uint32(i.slot(1))) }

// FailureMessage is the human-readable reason.
func (i SudoRejectInfo) FailureMessage() string { return i.r.str(i.slot(2)) }

// Sudo reports a sudo(8) decision.
type Sudo struct{ payload }

// Success reports whether sudo allowed the command.
func (e Sudo) Success() bool { return e.boolf(0) }

// RejectInfo explains a rejection, when sudo supplied one.
func (e Sudo) RejectInfo() (SudoRejectInfo, bool) {
	off := uint32(e.slot(8))
	if off == 0 {
		return SudoRejectInfo{}, false
	}
	return SudoRejectInfo{r: e.r, off: off}, true
}

// FromUID is the invoking uid, behind its has_uid discriminant.
func (e Sudo) FromUID() (uint32, bool) {
	if !e.boolf(1) {
		return 0, false
	}
	return e.u32f(2), true
}

// FromUsername is the invoking username, when known.
func (e Sudo) FromUsername() string { return e.strf(3) }

// ToUID is the target uid; only interpretable on success with the
// discriminant set.
func (e Sudo) ToUID() (uint32, bool) {
	if !e.Success() || !e.boolf(4) {
		return 0, false
	}
	return e.u32f(5), true
}

// ToUsername is the target username, on success.
func (e Sudo) ToUsername() (string, bool) {
	if !e.Success() {
		return "", false
	}
	return e.strf(6), true
}

// Command is the command sudo ran or refused, when reported.
func (e Sudo) Command() string { return e.strf(7) }

// AuthorizationPetition reports a process petitioning for authorization
// rights.
type AuthorizationPetition struct{ payload }

// Instigator is the process that created the petition, when alive.
func (e AuthorizationPetition) Instigator() (Process, bool) { return e.optProc(0) }

// Petitioner is the process the petition is attributed to, when alive.
func (e AuthorizationPetition) Petitioner() (Process, bool) { return e.optProc(1) }

// Flags are the petition's authorization flags.
func (e AuthorizationPetition) Flags() uint32 { return e.u32f(2) }

// RightCount is the number of petitioned rights.
func (e AuthorizationPetition) RightCount() int { return int(e.slot(3)) }

// Rights iterates the petitioned right names.
func (e AuthorizationPetition) Rights() Iter[string] { return e.strings(3, 4) }

// AuthorizationRuleClass classifies how a right was decided.
type AuthorizationRuleClass uint32

const (
	RuleClassUser        AuthorizationRuleClass = 1
	RuleClassRule        AuthorizationRuleClass = 2
	RuleClassMechanism   AuthorizationRuleClass = 3
	RuleClassAllow       AuthorizationRuleClass = 4
	RuleClassDeny        AuthorizationRuleClass = 5
	RuleClassUnknown     AuthorizationRuleClass = 6
	RuleClassInvalid     AuthorizationRuleClass = 7
)

// AuthorizationResult is one right's outcome in a judgement. 16-byte
// packed entries: a right-name ref, then rule class and granted flag.
type AuthorizationResult struct {
	RightName string
	RuleClass AuthorizationRuleClass
	Granted   bool
}

const authResultEntrySize = 16

// AuthorizationJudgement reports the outcome of an authorization petition.
type AuthorizationJudgement struct{ payload }

// Instigator is the process that created the petition, when alive.
func (e AuthorizationJudgement) Instigator() (Process, bool) { return e.optProc(0) }

// Petitioner is the process the petition was attributed to, when alive.
func (e AuthorizationJudgement) Petitioner() (Process, bool) { return e.optProc(1) }

// ReturnCode is the overall judgement status.
func (e AuthorizationJudgement) ReturnCode() int32 { return e.i32f(2) }

// ResultCount is the number of per-right results.
func (e AuthorizationJudgement) ResultCount() int { return int(e.slot(3)) }

// Results iterates the per-right outcomes.
func (e AuthorizationJudgement) Results() Iter[AuthorizationResult] {
	arr := uint32(e.slot(4))
	r := e.r
	return newIter(e.ResultCount(), func(i int) AuthorizationResult {
		off := int(arr) + i*authResultEntrySize
		return AuthorizationResult{
			RightName: r.str(r.u64(off)),
			RuleClass: AuthorizationRuleClass(r.u32(off + 8)),
			Granted:   r.u32(off+12) != 0,
		}
	})
}

// ODMemberType tells how an OpenDirectory group member is identified.
type ODMemberType uint32

const (
	ODMemberUserName  ODMemberType = 0
	ODMemberUserUUID  ODMemberType = 1
	ODMemberGroupUUID ODMemberType = 2
)

// ODMemberID identifies one group member. Two slots: type, then the value
// string (a name or a UUID, per the type).
type ODMemberID struct {
	r   *Record
	off uint32
}

// Type tells how the member is identified.
func (m ODMemberID) Type() ODMemberType { return ODMemberType(uint32(m.r.u64(int(m.off)))) }

// Value is the member name or UUID string, per Type.
func (m ODMemberID) Value() string { return m.r.str(m.r.u64(int(m.off) + 8)) }

// odInstigated is the shared head of the OpenDirectory events: an optional
// instigator and an error code.
type odInstigated struct{ payload }

// Instigator is the process that performed the operation, when alive.
func (e odInstigated) Instigator() (Process, bool) { return e.optProc(0) }

// ErrorCode is 0 on success, an OD error otherwise.
func (e odInstigated) ErrorCode() int32 { return e.i32f(1) }

// ODGroupAdd reports a member being added to an OD group.
type ODGroupAdd struct{ odInstigated }

// GroupName is the group modified.
func (e ODGroupAdd) GroupName() string { return e.strf(2) }

// Member identifies the added member.
func (e ODGroupAdd) Member() ODMemberID {
	return ODMemberID{r: e.r, off: requireOff(uint32(e.slot(3)), "od member")}
}

// NodeName is the OD node.
func (e ODGroupAdd) NodeName() string { return e.strf(4) }

// DBPath is the local database path for local nodes, empty otherwise.
func (e ODGroupAdd) DBPath() string { return e.strf(5) }

// ODGroupRemove reports a member being removed from an OD group.
type ODGroupRemove struct{ odInstigated }

// GroupName is the group modified.
func (e ODGroupRemove) GroupName() string { return e.strf(2) }

// Member identifies the removed member.
func (e ODGroupRemove) Member() ODMemberID {
	return ODMemberID{r: e.r, off: requireOff(uint32(e.slot(3)), "od member")}
}

// NodeName is the OD node.
func (e ODGroupRemove) NodeName() string { return e.strf(4) }

// DBPath is the local database path for local nodes, empty otherwise.
func (e ODGroupRemove) DBPath() string { return e.strf(5) }

// ODGroupSet reports an OD group's member list being replaced wholesale.
type ODGroupSet struct{ odInstigated }

// GroupName is the group modified.
func (e ODGroupSet) GroupName() string { return e.strf(2) }

// MemberType tells how every member in the new list is identified.
func (e ODGroupSet) MemberType() ODMemberType { return ODMemberType(e.u32f(3)) }

// MemberCount is the size of the new member list.
func (e ODGroupSet) MemberCount() int { return int(e.slot(4)) }

// Members iterates the new member list; names or UUIDs per MemberType.
func (e ODGroupSet) Members() Iter[string] { return e.strings(4, 5) }

// NodeName is the OD node.
func (e ODGroupSet) NodeName() string { return e.strf(6) }

// DBPath is the local database path for local nodes, empty otherwise.
func (e ODGroupSet) DBPath() string { return e.strf(7) }

// ODAccountType distinguishes user from computer accounts.
type ODAccountType uint32

// ODModifyPassword reports an OD account password change.
type ODModifyPassword struct{ odInstigated }

// AccountType is the modified account's class.
func (e ODModifyPassword) AccountType() ODAccountType { return ODAccountType(e.u32f(2)) }

// AccountName is the modified account.
func (e ODModifyPassword) AccountName() string { return e.strf(3) }

// NodeName is the OD node.
func (e ODModifyPassword) NodeName() string { return e.strf(4) }

// DBPath is the local database path for local nodes, empty otherwise.
func (e ODModifyPassword) DBPath() string { return e.strf(5) }

// odUserNode is the shared tail of the user enable/disable/create/delete
// events.
type odUserNode struct{ odInstigated }

// UserName is the affected account.
func (e odUserNode) UserName() string { return e.strf(2) }

// NodeName is the OD node.
func (e odUserNode) NodeName() string { return e.strf(3) }

// DBPath is the local database path for local nodes, empty otherwise.
func (e odUserNode) DBPath() string { return e.strf(4) }

// ODDisableUser reports an OD user account being disabled.
type ODDisableUser struct{ odUserNode }

// ODEnableUser reports an OD user account being enabled.
type ODEnableUser struct{ odUserNode }

// ODCreateUser reports an OD user account being created.
type ODCreateUser struct{ odUserNode }

// ODDeleteUser reports an OD user account being deleted.
type ODDeleteUser struct{ odUserNode }

// odGroupNode is the group counterpart of odUserNode.
type odGroupNode struct{ odInstigated }

// GroupName is the affected group.
func (e odGroupNode) GroupName() string { return e.strf(2) }

// NodeName is the OD node.
func (e odGroupNode) NodeName() string { return e.strf(3) }

// DBPath is the local database path for local nodes, empty otherwise.
func (e odGroupNode) DBPath() string { return e.strf(4) }

// ODCreateGroup reports an OD group being created.
type ODCreateGroup struct{ odGroupNode }

// ODDeleteGroup reports an OD group being deleted.
type ODDeleteGroup struct{ odGroupNode }

// ODRecordType distinguishes user from group records.
type ODRecordType uint32

// ODAttributeValueAdd reports a value being added to an OD record
// attribute.
type ODAttributeValueAdd struct{ odInstigated }

// RecordType is the modified record's class.
func (e ODAttributeValueAdd) RecordType() ODRecordType { return ODRecordType(e.u32f(2)) }

// RecordName is the modified record.
func (e ODAttributeValueAdd) RecordName() string { return e.strf(3) }

// AttributeName is the modified attribute.
func (e ODAttributeValueAdd) AttributeName() string { return e.strf(4) }

// AttributeValue is the added value.
func (e ODAttributeValueAdd) AttributeValue() string { return e.strf(5) }

// NodeName is the OD node.
func (e ODAttributeValueAdd) NodeName() string { return e.strf(6) }

// DBPath is the local database path for local nodes, empty otherwise.
func (e ODAttributeValueAdd) DBPath() string { return e.strf(7) }

// ODAttributeValueRemove reports a value being removed from an OD record
// attribute.
type ODAttributeValueRemove struct{ odInstigated }

// RecordType is the modified record's class.
func (e ODAttributeValueRemove) RecordType() ODRecordType { return ODRecordType(e.u32f(2)) }

// RecordName is the modified record.
func (e ODAttributeValueRemove) RecordName() string { return e.strf(3) }

// AttributeName is the modified attribute.
func (e ODAttributeValueRemove) AttributeName() string { return e.strf(4) }

// AttributeValue is the removed value.
func (e ODAttributeValueRemove) AttributeValue() string { return e.strf(5) }

// NodeName is the OD node.
func (e ODAttributeValueRemove) NodeName() string { return e.strf(6) }

// DBPath is the local database path for local nodes, empty otherwise.
func (e ODAttributeValueRemove) DBPath() string { return e.strf(7) }

// ODAttributeSet reports an OD record attribute being replaced wholesale.
type ODAttributeSet struct{ odInstigated }

// RecordType is the modified record's class.
func (e ODAttributeSet) RecordType() ODRecordType { return ODRecordType(e.u32f(2)) }

// RecordName is the modified record.
func (e ODAttributeSet) RecordName() string { return e.strf(3) }

// AttributeName is the modified attribute.
func (e ODAttributeSet) AttributeName() string { return e.strf(4) }

// ValueCount is the size of the new value list.
func (e ODAttributeSet) ValueCount() int { return int(e.slot(5)) }

// Values iterates the new value list.
func (e ODAttributeSet) Values() Iter[string] { return e.strings(5, 6) }

// NodeName is the OD node.
func (e ODAttributeSet) NodeName() string { return e.strf(7) }

// DBPath is the local database path for local nodes, empty otherwise.
func (e ODAttributeSet) DBPath() string { return e.strf(8) }

// XPCDomainType classifies the launchd domain a service lives in.
type XPCDomainType uint32

// XPCConnect reports a connection to an XPC service.
type XPCConnect struct{ payload }

// ServiceName is the XPC service name connected to.
func (e XPCConnect) ServiceName() string { return e.strf(0) }

// ServiceDomainType is the launchd domain of the service.
func (e XPCConnect) ServiceDomainType() XPCDomainType { return XPCDomainType(e.u32f(1)) }

// GatekeeperSignedFileInfo carries the signing identifiers of a file a
// Gatekeeper override was applied to. Three slots.
type GatekeeperSignedFileInfo struct {
	r   *Record
	off uint32
}

func (s GatekeeperSignedFileInfo) slot(i int) uint64 { return s.r.u64(int(s.off) + 8*i) }

// CDHash is the file's code directory hash.
func (s GatekeeperSignedFileInfo) CDHash() [20]byte {
	var h [20]byte
	copy(h[:], s.r.blob(requireOff(uint32(s.slot(0)), "cdhash"), 20))
	return h
}

// TeamID is the signing team identifier.
func (s GatekeeperSignedFileInfo) TeamID() string { return s.r.str(s.slot(1)) }

// SigningID is the code-signing identifier.
func (s GatekeeperSignedFileInfo) SigningID() string { return s.r.str(s.slot(2)) }

// GatekeeperUserOverride reports a user overriding a Gatekeeper block.
type GatekeeperUserOverride struct{ payload }

// FilePath is the overridden file's path. One of FilePath/File is set,
// selected by the payload's internal tag.
func (e GatekeeperUserOverride) FilePath() (string, bool) {
	if e.u32f(0) != 0 {
		return "", false
	}
	return e.strf(1), true
}

// File is the overridden file, when the kernel delivered a full file
// sub-record rather than a bare path.
func (e GatekeeperUserOverride) File() (File, bool) {
	if e.u32f(0) != 1 {
		return File{}, false
	}
	return e.optFile(2)
}

// SHA256 is the file's hash, when computed.
func (e GatekeeperUserOverride) SHA256() ([32]byte, bool) {
	off := uint32(e.slot(3))
	if off == 0 {
		return [32]byte{}, false
	}
	var h [32]byte
	copy(h[:], e.r.blob(off, 32))
	return h, true
}

// SigningInfo carries the file's signing identifiers, when signed.
func (e GatekeeperUserOverride) SigningInfo() (GatekeeperSignedFileInfo, bool) {
	off := uint32(e.slot(4))
	if off == 0 {
		return GatekeeperSignedFileInfo{}, false
	}
	return GatekeeperSignedFileInfo{r: e.r, off: off}, true
}

// TCCIdentityType tells how a TCC client identity string is to be read.
type TCCIdentityType uint32

// TCCEventType classifies a TCC database mutation.
type TCCEventType uint32

// TCCAuthorizationRight is the right state after a TCC modification.
type TCCAuthorizationRight uint32

// TCCAuthorizationReason explains why a TCC right changed.
type TCCAuthorizationReason uint32

// TCCModify reports a TCC permission database change.
type TCCModify struct{ payload }

// Service is the TCC service whose permission changed.
func (e TCCModify) Service() string { return e.strf(0) }

// Identity is the client whose permission changed.
func (e TCCModify) Identity() string { return e.strf(1) }

// IdentityType tells how Identity is encoded.
func (e TCCModify) IdentityType() TCCIdentityType { return TCCIdentityType(e.u32f(2)) }

// UpdateType classifies the mutation.
func (e TCCModify) UpdateType() TCCEventType { return TCCEventType(e.u32f(3)) }

// Instigator is the process that triggered the change, when alive.
func (e TCCModify) Instigator() (Process, bool) { return e.optProc(4) }

// InstigatorToken identifies the instigator even after it exited.
func (e TCCModify) InstigatorToken() AuditToken { return e.tokenf(5, "tcc instigator token") }

// Responsible is the responsible process, when attributable and alive.
func (e TCCModify) Responsible() (Process, bool) { return e.optProc(6) }

// ResponsibleToken identifies the responsible process, when attributable.
func (e TCCModify) ResponsibleToken() (AuditToken, bool) { return e.optToken(7) }

// Right is the resulting permission state.
func (e TCCModify) Right() TCCAuthorizationRight { return TCCAuthorizationRight(e.u32f(8)) }

// Reason explains the change.
func (e TCCModify) Reason() TCCAuthorizationReason { return TCCAuthorizationReason(e.u32f(9)) }
