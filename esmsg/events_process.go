package esmsg

// Fork reports the creation of a child process.
type Fork struct{ payload }

// Child is the newly created process.
func (e Fork) Child() Process { return e.proc(0, "fork child") }

// Exit reports process termination.
type Exit struct{ payload }

// Status is the raw wait(2) status of the exiting process.
func (e Exit) Status() int32 { return e.i32f(0) }

// Signal reports a signal being sent to a process.
type Signal struct{ payload }

// Sig is the signal number.
func (e Signal) Sig() int32 { return e.i32f(0) }

// Target is the process receiving the signal.
func (e Signal) Target() Process { return e.proc(1, "signal target") }

// TaskType qualifies which flavor of task port a get_task-family event
// requested.
type TaskType uint32

const (
	TaskTypeControl TaskType = 0
	TaskTypeRead    TaskType = 1
	TaskTypeInspect TaskType = 2
	TaskTypeName    TaskType = 3
)

// getTask is the shared shape of the get_task family: a target process and
// a version-gated port flavor.
type getTask struct{ payload }

func (e getTask) target(what string) Process { return e.proc(0, what) }

func (e getTask) taskType() (TaskType, bool) {
	if e.r.version < 5 {
		return 0, false
	}
	return TaskType(e.u32f(1)), true
}

// GetTask reports a request for a process's control task port.
type GetTask struct{ getTask }

// Target is the process whose task port was requested.
func (e GetTask) Target() Process { return e.target("get_task target") }

// Type is the requested port flavor, on version 5 and later.
func (e GetTask) Type() (TaskType, bool) { return e.taskType() }

// GetTaskRead reports a request for a read task port.
type GetTaskRead struct{ getTask }

// Target is the process whose task port was requested.
func (e GetTaskRead) Target() Process { return e.target("get_task_read target") }

// Type is the requested port flavor, on version 5 and later.
func (e GetTaskRead) Type() (TaskType, bool) { return e.taskType() }

// GetTaskInspect reports a request for an inspect task port.
type GetTaskInspect struct{ getTask }

// Target is the process whose task port was requested.
func (e GetTaskInspect) Target() Process { return e.target("get_task_inspect target") }

// Type is the requested port flavor, on version 5 and later.
func (e GetTaskInspect) Type() (TaskType, bool) { return e.taskType() }

// GetTaskName reports a request for a name task port.
type GetTaskName struct{ getTask }

// Target is the process whose task port was requested.
func (e GetTaskName) Target() Process { return e.target("get_task_name target") }

// Type is the requested port flavor, on version 5 and later.
func (e GetTaskName) Type() (TaskType, bool) { return e.taskType() }

// ProcCheckType mirrors the proc_info(2) call classes a proc_check event
// can carry.
type ProcCheckType uint32

// ProcCheck reports a proc_info-style query about another process.
type ProcCheck struct{ payload }

// Target is the process being queried. The kernel omits it for some query
// flavors, so it is genuinely optional here.
func (e ProcCheck) Target() (Process, bool) { return e.optProc(0) }

// Type is the query class.
func (e ProcCheck) Type() ProcCheckType { return ProcCheckType(e.u32f(1)) }

// Flavor is the proc_info flavor argument.
func (e ProcCheck) Flavor() int32 { return e.i32f(2) }

// ProcSuspendResumeType distinguishes suspend, resume, and shutdown-sockets
// operations.
type ProcSuspendResumeType uint32

const (
	ProcSuspend         ProcSuspendResumeType = 0
	ProcResume          ProcSuspendResumeType = 1
	ProcShutdownSockets ProcSuspendResumeType = 3
)

// ProcSuspendResume reports a process being suspended or resumed.
type ProcSuspendResume struct{ payload }

// Target is the affected process; absent for shutdown-sockets operations.
func (e ProcSuspendResume) Target() (Process, bool) { return e.optProc(0) }

// Type is the operation performed.
func (e ProcSuspendResume) Type() ProcSuspendResumeType {
	return ProcSuspendResumeType(e.u32f(1))
}

// CsInvalidated reports that the acting process's code-signing status
// became invalid. No payload beyond the acting process.
type CsInvalidated struct{ payload }

// Trace reports a process attaching to another via ptrace.
type Trace struct{ payload }

// Target is the process being traced.
func (e Trace) Target() Process { return e.proc(0, "trace target") }

// RemoteThreadCreate reports a thread created in another process's task.
type RemoteThreadCreate struct{ payload }

// Target is the process the thread was created in.
func (e RemoteThreadCreate) Target() Process { return e.proc(0, "remote_thread_create target") }

// ThreadState is the new thread's register state, when the creator supplied
// one.
func (e RemoteThreadCreate) ThreadState() (ThreadState, bool) {
	off := uint32(e.slot(1))
	if off == 0 {
		return ThreadState{}, false
	}
	return ThreadState{r: e.r, off: off}, true
}

// ThreadState carries the architecture-specific register state handed to a
// remotely created thread. Two slots: flavor, then a byte span.
type ThreadState struct {
	r   *Record
	off uint32
}

// Flavor is the thread_state flavor constant.
func (s ThreadState) Flavor() int32 { return int32(uint32(s.r.u64(int(s.off)))) }

// State is the raw register state. Aliases the record buffer.
func (s ThreadState) State() []byte { return s.r.span(s.r.u64(int(s.off) + 8)) }

// Setuid reports a setuid(2) call.
type Setuid struct{ payload }

// UID is the argument of the call.
func (e Setuid) UID() uint32 { return e.u32f(0) }

// Setgid reports a setgid(2) call.
type Setgid struct{ payload }

// GID is the argument of the call.
func (e Setgid) GID() uint32 { return e.u32f(0) }

// Seteuid reports a seteuid(2) call.
type Seteuid struct{ payload }

// EUID is the argument of the call.
func (e Seteuid) EUID() uint32 { return e.u32f(0) }

// Setegid reports a setegid(2) call.
type Setegid struct{ payload }

// EGID is the argument of the call.
func (e Setegid) EGID() uint32 { return e.u32f(0) }

// Setreuid reports a setreuid(2) call.
type Setreuid struct{ payload }

// RUID is the real uid argument.
func (e Setreuid) RUID() uint32 { return e.u32f(0) }

// EUID is the effective uid argument.
func (e Setreuid) EUID() uint32 { return e.u32f(1) }

// Setregid reports a setregid(2) call.
type Setregid struct{ payload }

// RGID is the real gid argument.
func (e Setregid) RGID() uint32 { return e.u32f(0) }

// EGID is the effective gid argument.
func (e Setregid) EGID() uint32 { return e.u32f(1) }
