package esmsg

// Setextattr reports an extended attribute being set.
type Setextattr struct{ payload }

// Target is the file whose attribute changes.
func (e Setextattr) Target() File { return e.file(0, "setextattr target") }

// Extattr is the attribute name.
func (e Setextattr) Extattr() string { return e.strf(1) }

// Getextattr reports an extended attribute being read.
type Getextattr struct{ payload }

// Target is the file whose attribute is read.
func (e Getextattr) Target() File { return e.file(0, "getextattr target") }

// Extattr is the attribute name.
func (e Getextattr) Extattr() string { return e.strf(1) }

// Deleteextattr reports an extended attribute being removed.
type Deleteextattr struct{ payload }

// Target is the file whose attribute is removed.
func (e Deleteextattr) Target() File { return e.file(0, "deleteextattr target") }

// Extattr is the attribute name.
func (e Deleteextattr) Extattr() string { return e.strf(1) }

// Listextattr reports a file's extended attributes being listed.
type Listextattr struct{ payload }

// Target is the listed file.
func (e Listextattr) Target() File { return e.file(0, "listextattr target") }

// Setmode reports a chmod(2)-style mode change.
type Setmode struct{ payload }

// Mode is the new mode.
func (e Setmode) Mode() uint32 { return e.u32f(0) }

// Target is the file whose mode changes.
func (e Setmode) Target() File { return e.file(1, "setmode target") }

// Setflags reports a chflags(2) call.
type Setflags struct{ payload }

// Flags are the new BSD file flags.
func (e Setflags) Flags() uint32 { return e.u32f(0) }

// Target is the file whose flags change.
func (e Setflags) Target() File { return e.file(1, "setflags target") }

// Setowner reports a chown(2) call.
type Setowner struct{ payload }

// UID is the new owning user.
func (e Setowner) UID() uint32 { return e.u32f(0) }

// GID is the new owning group.
func (e Setowner) GID() uint32 { return e.u32f(1) }

// Target is the file whose ownership changes.
func (e Setowner) Target() File { return e.file(2, "setowner target") }

// SetOrClear tags whether a setacl event installs or removes an ACL.
type SetOrClear uint32

const (
	ACLSet   SetOrClear = 0
	ACLClear SetOrClear = 1
)

// Setacl reports a file's ACL being set or cleared.
type Setacl struct{ payload }

// Target is the file whose ACL changes.
func (e Setacl) Target() File { return e.file(0, "setacl target") }

// SetOrClear tags the operation. The ACL itself is only carried for set.
func (e Setacl) SetOrClear() SetOrClear { return SetOrClear(e.u32f(1)) }

// ACL is the flattened ACL being installed. Absent for clear operations;
// the discriminant is checked before the union arm is touched.
func (e Setacl) ACL() ([]byte, bool) {
	if e.SetOrClear() != ACLSet {
		return nil, false
	}
	return e.spanf(2), true
}

// Attrlist mirrors the attrlist argument of getattrlist(2)-family calls:
// a bitmap count and five attribute group masks.
type Attrlist struct {
	BitmapCount uint16
	CommonAttr  uint32
	VolAttr     uint32
	DirAttr     uint32
	FileAttr    uint32
	ForkAttr    uint32
}

func (p payload) attrlist() Attrlist {
	return Attrlist{
		BitmapCount: uint16(p.slot(0)),
		CommonAttr:  p.u32f(1),
		VolAttr:     p.u32f(2),
		DirAttr:     p.u32f(3),
		FileAttr:    p.u32f(4),
		ForkAttr:    p.u32f(5),
	}
}

// Getattrlist reports a getattrlist(2) call.
type Getattrlist struct{ payload }

// Attrlist is the requested attribute groups.
func (e Getattrlist) Attrlist() Attrlist { return e.attrlist() }

// Target is the queried file.
func (e Getattrlist) Target() File { return e.file(6, "getattrlist target") }

// Setattrlist reports a setattrlist(2) call.
type Setattrlist struct{ payload }

// Attrlist is the attribute groups being set.
func (e Setattrlist) Attrlist() Attrlist { return e.attrlist() }

// Target is the modified file.
func (e Setattrlist) Target() File { return e.file(6, "setattrlist target") }

// Searchfs reports a searchfs(2) call.
type Searchfs struct{ payload }

// Attrlist is the attribute groups the search matches on.
func (e Searchfs) Attrlist() Attrlist { return e.attrlist() }

// Target is the volume root the search runs over.
func (e Searchfs) Target() File { return e.file(6, "searchfs target") }
