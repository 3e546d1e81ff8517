// Package fsutil holds the filesystem and integrity helpers the loaders
// share: SHA1 verification of cached artifacts, atomic writes, and random
// access into ZIP archives such as installer JARs.
//
// Installer JARs are read in place; nothing is extracted to disk:
//
//	z, err := fsutil.OpenZip(path)
//	if err != nil {
//	    return err
//	}
//	defer z.Close()
//
//	var profile InstallProfile
//	if err := z.ReadJSON("install_profile.json", &profile); err != nil {
//	    return err
//	}
package fsutil
