// Package cmdline turns the kernel command line into the configuration needed
// to mount the root filesystem and start init.
package cmdline

// Parse applies every option of cmdline, in order, to the default
// configuration. The last occurrence of an option wins. When the result
// selects an nfs root, it is resolved with src, which is only read if
// nfsroot= does not name the server itself.
func Parse(cmdline string, src RecordSource) (Config, error) {
	cfg := NewConfig()
	err := Tokenize(cmdline, func(opt Option) error {
		next, err := Apply(cfg, opt)
		if err != nil {
			return err
		}
		cfg = next
		return nil
	})
	if err != nil {
		return cfg, err
	}

	if cfg.IsNFS() {
		return ResolveNFSRoot(cfg, src)
	}
	return cfg, nil
}
