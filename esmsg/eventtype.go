package esmsg

// EventType is the kind discriminant of a record. Values mirror the native
// event-type enumeration and never change once shipped; new OS releases
// only append.
type EventType uint32

const (
	// 10.15.0
	AuthExec                      EventType = 0
	AuthOpen                      EventType = 1
	AuthKextload                  EventType = 2
	AuthMmap                      EventType = 3
	AuthMprotect                  EventType = 4
	AuthMount                     EventType = 5
	AuthRename                    EventType = 6
	AuthSignal                    EventType = 7
	AuthUnlink                    EventType = 8
	NotifyExec                    EventType = 9
	NotifyOpen                    EventType = 10
	NotifyFork                    EventType = 11
	NotifyClose                   EventType = 12
	NotifyCreate                  EventType = 13
	NotifyExchangedata            EventType = 14
	NotifyExit                    EventType = 15
	NotifyGetTask                 EventType = 16
	NotifyKextload                EventType = 17
	NotifyKextunload              EventType = 18
	NotifyLink                    EventType = 19
	NotifyMmap                    EventType = 20
	NotifyMprotect                EventType = 21
	NotifyMount                   EventType = 22
	NotifyUnmount                 EventType = 23
	NotifyIokitOpen               EventType = 24
	NotifyRename                  EventType = 25
	NotifySetattrlist             EventType = 26
	NotifySetextattr              EventType = 27
	NotifySetflags                EventType = 28
	NotifySetmode                 EventType = 29
	NotifySetowner                EventType = 30
	NotifySignal                  EventType = 31
	NotifyUnlink                  EventType = 32
	NotifyWrite                   EventType = 33
	AuthFileProviderMaterialize   EventType = 34
	NotifyFileProviderMaterialize EventType = 35
	AuthFileProviderUpdate        EventType = 36
	NotifyFileProviderUpdate      EventType = 37
	AuthReadlink                  EventType = 38
	NotifyReadlink                EventType = 39
	AuthTruncate                  EventType = 40
	NotifyTruncate                EventType = 41
	AuthLink                      EventType = 42
	NotifyLookup                  EventType = 43
	AuthCreate                    EventType = 44
	AuthSetattrlist               EventType = 45
	AuthSetextattr                EventType = 46
	AuthSetflags                  EventType = 47
	AuthSetmode                   EventType = 48
	AuthSetowner                  EventType = 49

	// 10.15.1
	AuthChdir           EventType = 50
	NotifyChdir         EventType = 51
	AuthGetattrlist     EventType = 52
	NotifyGetattrlist   EventType = 53
	NotifyStat          EventType = 54
	NotifyAccess        EventType = 55
	AuthChroot          EventType = 56
	NotifyChroot        EventType = 57
	AuthUtimes          EventType = 58
	NotifyUtimes        EventType = 59
	AuthClone           EventType = 60
	NotifyClone         EventType = 61
	NotifyFcntl         EventType = 62
	AuthGetextattr      EventType = 63
	NotifyGetextattr    EventType = 64
	AuthListextattr     EventType = 65
	NotifyListextattr   EventType = 66
	AuthReaddir         EventType = 67
	NotifyReaddir       EventType = 68
	AuthDeleteextattr   EventType = 69
	NotifyDeleteextattr EventType = 70
	AuthFsgetpath       EventType = 71
	NotifyFsgetpath     EventType = 72
	NotifyDup           EventType = 73
	AuthSettime         EventType = 74
	NotifySettime       EventType = 75
	NotifyUipcBind      EventType = 76
	AuthUipcBind        EventType = 77
	NotifyUipcConnect   EventType = 78
	AuthUipcConnect     EventType = 79
	AuthExchangedata    EventType = 80
	AuthSetacl          EventType = 81
	NotifySetacl        EventType = 82

	// 10.15.4
	NotifyPtyGrant  EventType = 83
	NotifyPtyClose  EventType = 84
	AuthProcCheck   EventType = 85
	NotifyProcCheck EventType = 86
	AuthGetTask     EventType = 87

	// 11.0
	AuthSearchfs            EventType = 88
	NotifySearchfs          EventType = 89
	AuthFcntl               EventType = 90
	AuthIokitOpen           EventType = 91
	AuthProcSuspendResume   EventType = 92
	NotifyProcSuspendResume EventType = 93
	NotifyCsInvalidated     EventType = 94
	NotifyGetTaskName       EventType = 95
	NotifyTrace             EventType = 96
	NotifyRemoteThreadCreate EventType = 97
	AuthRemount             EventType = 98
	NotifyRemount           EventType = 99

	// 11.3
	AuthGetTaskRead      EventType = 100
	NotifyGetTaskRead    EventType = 101
	NotifyGetTaskInspect EventType = 102

	// 12.0
	NotifySetuid   EventType = 103
	NotifySetgid   EventType = 104
	NotifySeteuid  EventType = 105
	NotifySetegid  EventType = 106
	NotifySetreuid EventType = 107
	NotifySetregid EventType = 108
	AuthCopyfile   EventType = 109
	NotifyCopyfile EventType = 110

	// 13.0
	NotifyAuthentication      EventType = 111
	NotifyXPMalwareDetected   EventType = 112
	NotifyXPMalwareRemediated EventType = 113
	NotifyLWSessionLogin      EventType = 114
	NotifyLWSessionLogout     EventType = 115
	NotifyLWSessionLock       EventType = 116
	NotifyLWSessionUnlock     EventType = 117
	NotifyScreensharingAttach EventType = 118
	NotifyScreensharingDetach EventType = 119
	NotifyOpensshLogin        EventType = 120
	NotifyOpensshLogout       EventType = 121
	NotifyLoginLogin          EventType = 122
	NotifyLoginLogout         EventType = 123
	NotifyBTMLaunchItemAdd    EventType = 124
	NotifyBTMLaunchItemRemove EventType = 125

	// 14.0
	NotifyProfileAdd             EventType = 126
	NotifyProfileRemove          EventType = 127
	NotifySu                     EventType = 128
	NotifyAuthorizationPetition  EventType = 129
	NotifyAuthorizationJudgement EventType = 130
	NotifySudo                   EventType = 131
	NotifyODGroupAdd             EventType = 132
	NotifyODGroupRemove          EventType = 133
	NotifyODGroupSet             EventType = 134
	NotifyODModifyPassword       EventType = 135
	NotifyODDisableUser          EventType = 136
	NotifyODEnableUser           EventType = 137
	NotifyODAttributeValueAdd    EventType = 138
	NotifyODAttributeValueRemove EventType = 139
	NotifyODAttributeSet         EventType = 140
	NotifyODCreateUser           EventType = 141
	NotifyODCreateGroup          EventType = 142
	NotifyODDeleteUser           EventType = 143
	NotifyODDeleteGroup          EventType = 144
	NotifyXPCConnect             EventType = 145

	// 14.4
	NotifyGatekeeperUserOverride EventType = 146

	// 15.0
	NotifyTCCModify EventType = 147
)

// Known reports whether this binding understands the tag. Unknown tags are
// expected from newer kernels and decode to nil, never to a wrong variant.
func (t EventType) Known() bool { return int(t) < len(kinds) && kinds[t].name != "" }

// IsAuth reports whether the tag names a request the client must answer.
func (t EventType) IsAuth() bool { return t.Known() && kinds[t].response != respNone }

func (t EventType) String() string {
	if !t.Known() {
		return "unknown"
	}
	return kinds[t].name
}
