package esmsg

// Kextload reports a kernel extension load request.
type Kextload struct{ payload }

// Identifier is the kext bundle identifier.
func (e Kextload) Identifier() string { return e.strf(0) }

// Kextunload reports a kernel extension being unloaded.
type Kextunload struct{ payload }

// Identifier is the kext bundle identifier.
func (e Kextunload) Identifier() string { return e.strf(0) }

// Mount reports a filesystem mount.
type Mount struct{ payload }

// Statfs describes the filesystem being mounted.
func (e Mount) Statfs() Statfs {
	return Statfs{r: e.r, off: requireOff(uint32(e.slot(0)), "mount statfs")}
}

// Unmount reports a filesystem unmount.
type Unmount struct{ payload }

// Statfs describes the filesystem being unmounted.
func (e Unmount) Statfs() Statfs {
	return Statfs{r: e.r, off: requireOff(uint32(e.slot(0)), "unmount statfs")}
}

// Remount reports a filesystem remount.
type Remount struct{ payload }

// Statfs describes the filesystem being remounted.
func (e Remount) Statfs() Statfs {
	return Statfs{r: e.r, off: requireOff(uint32(e.slot(0)), "remount statfs")}
}

// IokitOpen reports a user client opening an IOKit service.
type IokitOpen struct{ payload }

// UserClientType is the connection type argument.
func (e IokitOpen) UserClientType() uint32 { return e.u32f(0) }

// UserClientClass is the IOKit class name being opened.
func (e IokitOpen) UserClientClass() string { return e.strf(1) }

// PtyGrant reports a pseudoterminal being granted.
type PtyGrant struct{ payload }

// Dev is the pty device number.
func (e PtyGrant) Dev() int32 { return e.i32f(0) }

// PtyClose reports a pseudoterminal being closed.
type PtyClose struct{ payload }

// Dev is the pty device number.
func (e PtyClose) Dev() int32 { return e.i32f(0) }

// UipcBind reports a unix-domain socket being bound to a path.
type UipcBind struct{ payload }

// Dir is the directory the socket file lands in.
func (e UipcBind) Dir() File { return e.file(0, "uipc_bind dir") }

// Filename is the socket file's name.
func (e UipcBind) Filename() string { return e.strf(1) }

// Mode is the socket file's mode.
func (e UipcBind) Mode() uint32 { return e.u32f(2) }

// UipcConnect reports a connection to a unix-domain socket.
type UipcConnect struct{ payload }

// File is the socket file being connected to.
func (e UipcConnect) File() File { return e.file(0, "uipc_connect file") }

// Domain is the socket domain (AF_UNIX in practice).
func (e UipcConnect) Domain() int32 { return e.i32f(1) }

// Type is the socket type.
func (e UipcConnect) Type() int32 { return e.i32f(2) }

// Protocol is the socket protocol.
func (e UipcConnect) Protocol() int32 { return e.i32f(3) }

// FileProviderMaterialize reports a file-provider placeholder being
// replaced with real content.
type FileProviderMaterialize struct{ payload }

// Instigator is the process that triggered the materialization.
func (e FileProviderMaterialize) Instigator() Process {
	return e.proc(0, "file_provider_materialize instigator")
}

// Source is the placeholder file.
func (e FileProviderMaterialize) Source() File {
	return e.file(1, "file_provider_materialize source")
}

// Target is the materialized file.
func (e FileProviderMaterialize) Target() File {
	return e.file(2, "file_provider_materialize target")
}

// FileProviderUpdate reports a file-provider managed file moving to a new
// path.
type FileProviderUpdate struct{ payload }

// Source is the file being updated.
func (e FileProviderUpdate) Source() File { return e.file(0, "file_provider_update source") }

// TargetPath is the file's new path.
func (e FileProviderUpdate) TargetPath() string { return e.strf(1) }
