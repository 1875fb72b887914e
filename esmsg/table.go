package esmsg

// The per-kind table is the single source for decode, naming, and reply
// classification; keeping the three in one place is what keeps them in
// lock-step when a new OS release appends kinds.

type responseClass int

const (
	respNone responseClass = iota
	respAuth
	respFlags
)

type kindInfo struct {
	name     string
	response responseClass
	decode   func(payload) Event
}

var kinds = [...]kindInfo{
	AuthExec:                      {"auth_exec", respAuth, func(p payload) Event { return Exec{p} }},
	AuthOpen:                      {"auth_open", respFlags, func(p payload) Event { return Open{p} }},
	AuthKextload:                  {"auth_kextload", respAuth, func(p payload) Event { return Kextload{p} }},
	AuthMmap:                      {"auth_mmap", respAuth, func(p payload) Event { return Mmap{p} }},
	AuthMprotect:                  {"auth_mprotect", respAuth, func(p payload) Event { return Mprotect{p} }},
	AuthMount:                     {"auth_mount", respAuth, func(p payload) Event { return Mount{p} }},
	AuthRename:                    {"auth_rename", respAuth, func(p payload) Event { return Rename{p} }},
	AuthSignal:                    {"auth_signal", respAuth, func(p payload) Event { return Signal{p} }},
	AuthUnlink:                    {"auth_unlink", respAuth, func(p payload) Event { return Unlink{p} }},
	NotifyExec:                    {"notify_exec", respNone, func(p payload) Event { return Exec{p} }},
	NotifyOpen:                    {"notify_open", respNone, func(p payload) Event { return Open{p} }},
	NotifyFork:                    {"notify_fork", respNone, func(p payload) Event { return Fork{p} }},
	NotifyClose:                   {"notify_close", respNone, func(p payload) Event { return Close{p} }},
	NotifyCreate:                  {"notify_create", respNone, func(p payload) Event { return Create{p} }},
	NotifyExchangedata:            {"notify_exchangedata", respNone, func(p payload) Event { return Exchangedata{p} }},
	NotifyExit:                    {"notify_exit", respNone, func(p payload) Event { return Exit{p} }},
	NotifyGetTask:                 {"notify_get_task", respNone, func(p payload) Event { return GetTask{getTask{p}} }},
	NotifyKextload:                {"notify_kextload", respNone, func(p payload) Event { return Kextload{p} }},
	NotifyKextunload:              {"notify_kextunload", respNone, func(p payload) Event { return Kextunload{p} }},
	NotifyLink:                    {"notify_link", respNone, func(p payload) Event { return Link{p} }},
	NotifyMmap:                    {"notify_mmap", respNone, func(p payload) Event { return Mmap{p} }},
	NotifyMprotect:                {"notify_mprotect", respNone, func(p payload) Event { return Mprotect{p} }},
	NotifyMount:                   {"notify_mount", respNone, func(p payload) Event { return Mount{p} }},
	NotifyUnmount:                 {"notify_unmount", respNone, func(p payload) Event { return Unmount{p} }},
	NotifyIokitOpen:               {"notify_iokit_open", respNone, func(p payload) Event { return IokitOpen{p} }},
	NotifyRename:                  {"notify_rename", respNone, func(p payload) Event { return Rename{p} }},
	NotifySetattrlist:             {"notify_setattrlist", respNone, func(p payload) Event { return Setattrlist{p} }},
	NotifySetextattr:              {"notify_setextattr", respNone, func(p payload) Event { return Setextattr{p} }},
	NotifySetflags:                {"notify_setflags", respNone, func(p payload) Event { return Setflags{p} }},
	NotifySetmode:                 {"notify_setmode", respNone, func(p payload) Event { return Setmode{p} }},
	NotifySetowner:                {"notify_setowner", respNone, func(p payload) Event { return Setowner{p} }},
	NotifySignal:                  {"notify_signal", respNone, func(p payload) Event { return Signal{p} }},
	NotifyUnlink:                  {"notify_unlink", respNone, func(p payload) Event { return Unlink{p} }},
	NotifyWrite:                   {"notify_write", respNone, func(p payload) Event { return Write{p} }},
	AuthFileProviderMaterialize:   {"auth_file_provider_materialize", respAuth, func(p payload) Event { return FileProviderMaterialize{p} }},
	NotifyFileProviderMaterialize: {"notify_file_provider_materialize", respNone, func(p payload) Event { return FileProviderMaterialize{p} }},
	AuthFileProviderUpdate:        {"auth_file_provider_update", respAuth, func(p payload) Event { return FileProviderUpdate{p} }},
	NotifyFileProviderUpdate:      {"notify_file_provider_update", respNone, func(p payload) Event { return FileProviderUpdate{p} }},
	AuthReadlink:                  {"auth_readlink", respAuth, func(p payload) Event { return Readlink{p} }},
	NotifyReadlink:                {"notify_readlink", respNone, func(p payload) Event { return Readlink{p} }},
	AuthTruncate:                  {"auth_truncate", respAuth, func(p payload) Event { return Truncate{p} }},
	NotifyTruncate:                {"notify_truncate", respNone, func(p payload) Event { return Truncate{p} }},
	AuthLink:                      {"auth_link", respAuth, func(p payload) Event { return Link{p} }},
	NotifyLookup:                  {"notify_lookup", respNone, func(p payload) Event { return Lookup{p} }},
	AuthCreate:                    {"auth_create", respAuth, func(p payload) Event { return Create{p} }},
	AuthSetattrlist:               {"auth_setattrlist", respAuth, func(p payload) Event { return Setattrlist{p} }},
	AuthSetextattr:                {"auth_setextattr", respAuth, func(p payload) Event { return Setextattr{p} }},
	AuthSetflags:                  {"auth_setflags", respAuth, func(p payload) Event { return Setflags{p} }},
	AuthSetmode:                   {"auth_setmode", respAuth, func(p payload) Event { return Setmode{p} }},
	AuthSetowner:                  {"auth_setowner", respAuth, func(p payload) Event { return Setowner{p} }},
	AuthChdir:                     {"auth_chdir", respAuth, func(p payload) Event { return Chdir{p} }},
	NotifyChdir:                   {"notify_chdir", respNone, func(p payload) Event { return Chdir{p} }},
	AuthGetattrlist:               {"auth_getattrlist", respAuth, func(p payload) Event { return Getattrlist{p} }},
	NotifyGetattrlist:             {"notify_getattrlist", respNone, func(p payload) Event { return Getattrlist{p} }},
	NotifyStat:                    {"notify_stat", respNone, func(p payload) Event { return StatEvent{p} }},
	NotifyAccess:                  {"notify_access", respNone, func(p payload) Event { return Access{p} }},
	AuthChroot:                    {"auth_chroot", respAuth, func(p payload) Event { return Chroot{p} }},
	NotifyChroot:                  {"notify_chroot", respNone, func(p payload) Event { return Chroot{p} }},
	AuthUtimes:                    {"auth_utimes", respAuth, func(p payload) Event { return Utimes{p} }},
	NotifyUtimes:                  {"notify_utimes", respNone, func(p payload) Event { return Utimes{p} }},
	AuthClone:                     {"auth_clone", respAuth, func(p payload) Event { return Clone{p} }},
	NotifyClone:                   {"notify_clone", respNone, func(p payload) Event { return Clone{p} }},
	NotifyFcntl:                   {"notify_fcntl", respNone, func(p payload) Event { return Fcntl{p} }},
	AuthGetextattr:                {"auth_getextattr", respAuth, func(p payload) Event { return Getextattr{p} }},
	NotifyGetextattr:              {"notify_getextattr", respNone, func(p payload) Event { return Getextattr{p} }},
	AuthListextattr:               {"auth_listextattr", respAuth, func(p payload) Event { return Listextattr{p} }},
	NotifyListextattr:             {"notify_listextattr", respNone, func(p payload) Event { return Listextattr{p} }},
	AuthReaddir:                   {"auth_readdir", respAuth, func(p payload) Event { return Readdir{p} }},
	NotifyReaddir:                 {"notify_readdir", respNone, func(p payload) Event { return Readdir{p} }},
	AuthDeleteextattr:             {"auth_deleteextattr", respAuth, func(p payload) Event { return Deleteextattr{p} }},
	NotifyDeleteextattr:           {"notify_deleteextattr", respNone, func(p payload) Event { return Deleteextattr{p} }},
	AuthFsgetpath:                 {"auth_fsgetpath", respAuth, func(p payload) Event { return Fsgetpath{p} }},
	NotifyFsgetpath:               {"notify_fsgetpath", respNone, func(p payload) Event { return Fsgetpath{p} }},
	NotifyDup:                     {"notify_dup", respNone, func(p payload) Event { return Dup{p} }},
	AuthSettime:                   {"auth_settime", respAuth, func(p payload) Event { return Settime{p} }},
	NotifySettime:                 {"notify_settime", respNone, func(p payload) Event { return Settime{p} }},
	NotifyUipcBind:                {"notify_uipc_bind", respNone, func(p payload) Event { return UipcBind{p} }},
	AuthUipcBind:                  {"auth_uipc_bind", respAuth, func(p payload) Event { return UipcBind{p} }},
	NotifyUipcConnect:             {"notify_uipc_connect", respNone, func(p payload) Event { return UipcConnect{p} }},
	AuthUipcConnect:               {"auth_uipc_connect", respAuth, func(p payload) Event { return UipcConnect{p} }},
	AuthExchangedata:              {"auth_exchangedata", respAuth, func(p payload) Event { return Exchangedata{p} }},
	AuthSetacl:                    {"auth_setacl", respAuth, func(p payload) Event { return Setacl{p} }},
	NotifySetacl:                  {"notify_setacl", respNone, func(p payload) Event { return Setacl{p} }},
	NotifyPtyGrant:                {"notify_pty_grant", respNone, func(p payload) Event { return PtyGrant{p} }},
	NotifyPtyClose:                {"notify_pty_close", respNone, func(p payload) Event { return PtyClose{p} }},
	AuthProcCheck:                 {"auth_proc_check", respAuth, func(p payload) Event { return ProcCheck{p} }},
	NotifyProcCheck:               {"notify_proc_check", respNone, func(p payload) Event { return ProcCheck{p} }},
	AuthGetTask:                   {"auth_get_task", respAuth, func(p payload) Event { return GetTask{getTask{p}} }},
	AuthSearchfs:                  {"auth_searchfs", respAuth, func(p payload) Event { return Searchfs{p} }},
	NotifySearchfs:                {"notify_searchfs", respNone, func(p payload) Event { return Searchfs{p} }},
	AuthFcntl:                     {"auth_fcntl", respAuth, func(p payload) Event { return Fcntl{p} }},
	AuthIokitOpen:                 {"auth_iokit_open", respAuth, func(p payload) Event { return IokitOpen{p} }},
	AuthProcSuspendResume:         {"auth_proc_suspend_resume", respAuth, func(p payload) Event { return ProcSuspendResume{p} }},
	NotifyProcSuspendResume:       {"notify_proc_suspend_resume", respNone, func(p payload) Event { return ProcSuspendResume{p} }},
	NotifyCsInvalidated:           {"notify_cs_invalidated", respNone, func(p payload) Event { return CsInvalidated{p} }},
	NotifyGetTaskName:             {"notify_get_task_name", respNone, func(p payload) Event { return GetTaskName{getTask{p}} }},
	NotifyTrace:                   {"notify_trace", respNone, func(p payload) Event { return Trace{p} }},
	NotifyRemoteThreadCreate:      {"notify_remote_thread_create", respNone, func(p payload) Event { return RemoteThreadCreate{p} }},
	AuthRemount:                   {"auth_remount", respAuth, func(p payload) Event { return Remount{p} }},
	NotifyRemount:                 {"notify_remount", respNone, func(p payload) Event { return Remount{p} }},
	AuthGetTaskRead:               {"auth_get_task_read", respAuth, func(p payload) Event { return GetTaskRead{getTask{p}} }},
	NotifyGetTaskRead:             {"notify_get_task_read", respNone, func(p payload) Event { return GetTaskRead{getTask{p}} }},
	NotifyGetTaskInspect:          {"notify_get_task_inspect", respNone, func(p payload) Event { return GetTaskInspect{getTask{p}} }},
	NotifySetuid:                  {"notify_setuid", respNone, func(p payload) Event { return Setuid{p} }},
	NotifySetgid:                  {"notify_setgid", respNone, func(p payload) Event { return Setgid{p} }},
	NotifySeteuid:                 {"notify_seteuid", respNone, func(p payload) Event { return Seteuid{p} }},
	NotifySetegid:                 {"notify_setegid", respNone, func(p payload) Event { return Setegid{p} }},
	NotifySetreuid:                {"notify_setreuid", respNone, func(p payload) Event { return Setreuid{p} }},
	NotifySetregid:                {"notify_setregid", respNone, func(p payload) Event { return Setregid{p} }},
	AuthCopyfile:                  {"auth_copyfile", respAuth, func(p payload) Event { return Copyfile{p} }},
	NotifyCopyfile:                {"notify_copyfile", respNone, func(p payload) Event { return Copyfile{p} }},
	NotifyAuthentication:          {"notify_authentication", respNone, func(p payload) Event { return Authentication{p} }},
	NotifyXPMalwareDetected:       {"notify_xp_malware_detected", respNone, func(p payload) Event { return XPMalwareDetected{p} }},
	NotifyXPMalwareRemediated:     {"notify_xp_malware_remediated", respNone, func(p payload) Event { return XPMalwareRemediated{p} }},
	NotifyLWSessionLogin:          {"notify_lw_session_login", respNone, func(p payload) Event { return LWSessionLogin{lwSession{p}} }},
	NotifyLWSessionLogout:         {"notify_lw_session_logout", respNone, func(p payload) Event { return LWSessionLogout{lwSession{p}} }},
	NotifyLWSessionLock:           {"notify_lw_session_lock", respNone, func(p payload) Event { return LWSessionLock{lwSession{p}} }},
	NotifyLWSessionUnlock:         {"notify_lw_session_unlock", respNone, func(p payload) Event { return LWSessionUnlock{lwSession{p}} }},
	NotifyScreensharingAttach:     {"notify_screensharing_attach", respNone, func(p payload) Event { return ScreensharingAttach{p} }},
	NotifyScreensharingDetach:     {"notify_screensharing_detach", respNone, func(p payload) Event { return ScreensharingDetach{p} }},
	NotifyOpensshLogin:            {"notify_openssh_login", respNone, func(p payload) Event { return OpensshLogin{p} }},
	NotifyOpensshLogout:           {"notify_openssh_logout", respNone, func(p payload) Event { return OpensshLogout{p} }},
	NotifyLoginLogin:              {"notify_login_login", respNone, func(p payload) Event { return LoginLogin{p} }},
	NotifyLoginLogout:             {"notify_login_logout", respNone, func(p payload) Event { return LoginLogout{p} }},
	NotifyBTMLaunchItemAdd:        {"notify_btm_launch_item_add", respNone, func(p payload) Event { return BTMLaunchItemAdd{p} }},
	NotifyBTMLaunchItemRemove:     {"notify_btm_launch_item_remove", respNone, func(p payload) Event { return BTMLaunchItemRemove{p} }},
	NotifyProfileAdd:              {"notify_profile_add", respNone, func(p payload) Event { return ProfileAdd{p} }},
	NotifyProfileRemove:           {"notify_profile_remove", respNone, func(p payload) Event { return ProfileRemove{p} }},
	NotifySu:                      {"notify_su", respNone, func(p payload) Event { return Su{p} }},
	NotifyAuthorizationPetition:   {"notify_authorization_petition", respNone, func(p payload) Event { return AuthorizationPetition{p} }},
	NotifyAuthorizationJudgement:  {"notify_authorization_judgement", respNone, func(p payload) Event { return AuthorizationJudgement{p} }},
	NotifySudo:                    {"notify_sudo", respNone, func(p payload) Event { return Sudo{p} }},
	NotifyODGroupAdd:              {"notify_od_group_add", respNone, func(p payload) Event { return ODGroupAdd{odInstigated{p}} }},
	NotifyODGroupRemove:           {"notify_od_group_remove", respNone, func(p payload) Event { return ODGroupRemove{odInstigated{p}} }},
	NotifyODGroupSet:              {"notify_od_group_set", respNone, func(p payload) Event { return ODGroupSet{odInstigated{p}} }},
	NotifyODModifyPassword:        {"notify_od_modify_password", respNone, func(p payload) Event { return ODModifyPassword{odInstigated{p}} }},
	NotifyODDisableUser:           {"notify_od_disable_user", respNone, func(p payload) Event { return ODDisableUser{odUserNode{odInstigated{p}}} }},
	NotifyODEnableUser:            {"notify_od_enable_user", respNone, func(p payload) Event { return ODEnableUser{odUserNode{odInstigated{p}}} }},
	NotifyODAttributeValueAdd:     {"notify_od_attribute_value_add", respNone, func(p payload) Event { return ODAttributeValueAdd{odInstigated{p}} }},
	NotifyODAttributeValueRemove:  {"notify_od_attribute_value_remove", respNone, func(p payload) Event { return ODAttributeValueRemove{odInstigated{p}} }},
	NotifyODAttributeSet:          {"notify_od_attribute_set", respNone, func(p payload) Event { return ODAttributeSet{odInstigated{p}} }},
	NotifyODCreateUser:            {"notify_od_create_user", respNone, func(p payload) Event { return ODCreateUser{odUserNode{odInstigated{p}}} }},
	NotifyODCreateGroup:           {"notify_od_create_group", respNone, func(p payload) Event { return ODCreateGroup{odGroupNode{odInstigated{p}}} }},
	NotifyODDeleteUser:            {"notify_od_delete_user", respNone, func(p payload) Event { return ODDeleteUser{odUserNode{odInstigated{p}}} }},
	NotifyODDeleteGroup:           {"notify_od_delete_group", respNone, func(p payload) Event { return ODDeleteGroup{odGroupNode{odInstigated{p}}} }},
	NotifyXPCConnect:              {"notify_xpc_connect", respNone, func(p payload) Event { return XPCConnect{p} }},
	NotifyGatekeeperUserOverride:  {"notify_gatekeeper_user_override", respNone, func(p payload) Event { return GatekeeperUserOverride{p} }},
	NotifyTCCModify:               {"notify_tcc_modify", respNone, func(p payload) Event { return TCCModify{p} }},
}

// NumKinds is one past the highest tag this table understands; derived from
// the table so appending a kind updates it automatically.
const NumKinds = EventType(len(kinds))

// payloadFree lists the kinds whose payload struct has no fields. Only for
// these may the header's event offset be zero.
var payloadFree = map[EventType]bool{
	AuthSettime:         true,
	NotifySettime:       true,
	NotifyCsInvalidated: true,
}
