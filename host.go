package main

import (
	"fmt"
	"os"
	"os/user"
	"strconv"

	"golang.org/x/sys/unix"

	"es-recorder/esversion"
)

// The recorder starts as root so it can reach the shim socket, but the
// database and binary archive belong to whoever ran sudo. This file reads
// what the process needs to know about its host at startup: the OS release
// the version gate runs against and the identity of the invoking user.

// hostOSVersion resolves the macOS release: the configured value when one is
// pinned, otherwise the kernel's own report.
func hostOSVersion(cfg Config) (maj, min, pat uint32, err error) {
	release := cfg.OSVersion
	if release == "" {
		release, err = unix.Sysctl("kern.osproductversion")
		if err != nil {
			return 0, 0, 0, fmt.Errorf("failed to read kern.osproductversion: %v", err)
		}
	}
	return esversion.Parse(release)
}

// invokingUser resolves the uid/gid of the user behind sudo. sudo exports
// the numeric identity directly; the name lookup covers environments that
// only pass SUDO_USER through.
func invokingUser() (uid, gid int, err error) {
	if uidStr, gidStr := os.Getenv("SUDO_UID"), os.Getenv("SUDO_GID"); uidStr != "" && gidStr != "" {
		uid, err = strconv.Atoi(uidStr)
		if err != nil {
			return 0, 0, fmt.Errorf("invalid SUDO_UID %q: %v", uidStr, err)
		}
		gid, err = strconv.Atoi(gidStr)
		if err != nil {
			return 0, 0, fmt.Errorf("invalid SUDO_GID %q: %v", gidStr, err)
		}
		return uid, gid, nil
	}

	name := os.Getenv("SUDO_USER")
	if name == "" {
		return 0, 0, fmt.Errorf("not invoked through sudo")
	}
	u, err := user.Lookup(name)
	if err != nil {
		return 0, 0, fmt.Errorf("could not look up %s: %v", name, err)
	}
	if uid, err = strconv.Atoi(u.Uid); err != nil {
		return 0, 0, fmt.Errorf("invalid uid for %s: %v", name, err)
	}
	if gid, err = strconv.Atoi(u.Gid); err != nil {
		return 0, 0, fmt.Errorf("invalid gid for %s: %v", name, err)
	}
	return uid, gid, nil
}

// dropPrivileges switches the process to the invoking user so files created
// from here on are not root-owned. Group first; once the uid is gone the
// process can no longer change groups.
func dropPrivileges() error {
	uid, gid, err := invokingUser()
	if err != nil {
		return err
	}
	if err := unix.Setgid(gid); err != nil {
		return fmt.Errorf("could not drop group privileges: %v", err)
	}
	if err := unix.Setuid(uid); err != nil {
		return fmt.Errorf("could not drop user privileges: %v", err)
	}
	return nil
}
