package esmsg

// Exec payload slots.
const (
	execSlotTarget     = 0  // process, required
	execSlotDyldPath   = 1  // string ref, v7+
	execSlotScript     = 2  // file, optional, v2+
	execSlotCwd        = 3  // file, v3+
	execSlotLastFd     = 4  // i32, v4+
	execSlotCputype    = 5  // u32, v6+
	execSlotCpusubtype = 6  // u32, v6+
	execSlotArgCount   = 7
	execSlotArgArray   = 8
	execSlotEnvCount   = 9
	execSlotEnvArray   = 10
	execSlotFdCount    = 11 // v4+
	execSlotFdArray    = 12
)

// Exec reports the execution of a new process image.
type Exec struct{ payload }

// Target is the process being executed.
func (e Exec) Target() Process { return e.proc(execSlotTarget, "exec target") }

// DyldExecPath is the exec path handed to dyld before symlink resolution,
// on version 7 and later.
func (e Exec) DyldExecPath() (string, bool) {
	if e.r.version < 7 {
		return "", false
	}
	return e.strf(execSlotDyldPath), true
}

// Script is the script being executed by an interpreter, on version 2 and
// later. Only set when the script ran directly, not as an interpreter
// argument.
func (e Exec) Script() (File, bool) {
	if e.r.version < 2 {
		return File{}, false
	}
	return e.optFile(execSlotScript)
}

// Cwd is the working directory at exec time, on version 3 and later.
func (e Exec) Cwd() (File, bool) {
	if e.r.version < 3 {
		return File{}, false
	}
	return e.optFile(execSlotCwd)
}

// LastFd is the highest open file descriptor after the exec completed, on
// version 4 and later.
func (e Exec) LastFd() (int32, bool) {
	if e.r.version < 4 {
		return 0, false
	}
	return e.i32f(execSlotLastFd), true
}

// ImageCputype is the CPU type of the image, on version 6 and later.
func (e Exec) ImageCputype() (uint32, bool) {
	if e.r.version < 6 {
		return 0, false
	}
	return e.u32f(execSlotCputype), true
}

// ImageCpusubtype is the CPU subtype of the image, on version 6 and later.
func (e Exec) ImageCpusubtype() (uint32, bool) {
	if e.r.version < 6 {
		return 0, false
	}
	return e.u32f(execSlotCpusubtype), true
}

// ArgCount is the number of exec arguments.
func (e Exec) ArgCount() int { return int(e.slot(execSlotArgCount)) }

// EnvCount is the number of environment variables.
func (e Exec) EnvCount() int { return int(e.slot(execSlotEnvCount)) }

// FdCount is the number of file descriptors open after exec, on version 4
// and later.
func (e Exec) FdCount() (int, bool) {
	if e.r.version < 4 {
		return 0, false
	}
	return int(e.slot(execSlotFdCount)), true
}

// Args iterates the exec arguments in order.
func (e Exec) Args() Iter[string] {
	return e.strings(execSlotArgCount, execSlotArgArray)
}

// Arg returns the argument at index i.
func (e Exec) Arg(i int) (string, bool) {
	it := e.Args()
	return it.Nth(i)
}

// Envs iterates the environment variables in order.
func (e Exec) Envs() Iter[string] {
	return e.strings(execSlotEnvCount, execSlotEnvArray)
}

// Env returns the environment variable at index i.
func (e Exec) Env(i int) (string, bool) {
	it := e.Envs()
	return it.Nth(i)
}

// Fds iterates the file descriptors open after the exec, on version 4 and
// later; the iterator is empty on older versions.
func (e Exec) Fds() Iter[Fd] {
	n, ok := e.FdCount()
	if !ok {
		n = 0
	}
	arr := uint32(e.slot(execSlotFdArray))
	r := e.r
	return newIter(n, func(i int) Fd {
		return Fd{r: r, off: arr + uint32(i)*fdEntrySize}
	})
}

// Fd entry layout inside the packed descriptor array: three slots.
const (
	fdSlotFd     = 0
	fdSlotType   = 1
	fdSlotPipeID = 2
	fdEntrySize  = 24
)

// PROX_FDTYPE_PIPE from libproc; the pipe id is only meaningful for pipes.
const fdTypePipe = 6

// Fd describes one open file descriptor.
type Fd struct {
	r   *Record
	off uint32
}

func (f Fd) slot(i int) uint64 { return f.r.u64(int(f.off) + 8*i) }

// Number is the descriptor number.
func (f Fd) Number() int32 { return int32(uint32(f.slot(fdSlotFd))) }

// Type is the libproc fd type.
func (f Fd) Type() uint32 { return uint32(f.slot(fdSlotType)) }

// PipeID correlates the two ends of a pipe. Only meaningful when Type is
// the pipe fd type; absent otherwise.
func (f Fd) PipeID() (uint64, bool) {
	if f.Type() != fdTypePipe {
		return 0, false
	}
	return f.slot(fdSlotPipeID), true
}
