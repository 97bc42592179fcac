package utils_test

import (
	"os"
	"path/filepath"
	"time"

	"github.com/containerd/containerd/mount"
	"github.com/kairos-io/immuroot/internal/constants"
	"github.com/kairos-io/immuroot/internal/utils"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/twpayne/go-vfs/v4"
	"github.com/twpayne/go-vfs/v4/vfst"
)

var _ = Describe("utils", func() {
	Context("CMDLineArg", func() {
		line := "test/key=value1 rd.immuroot.debug rootflags=trans=virtio empty= test/key=value2\n"
		It("returns every value of the key", func() {
			Expect(utils.CMDLineArg(line, "test/key")).To(Equal([]string{"value1", "value2"}))
			Expect(utils.CMDLineArg(line, "rootflags")).To(Equal([]string{"trans=virtio"}))
			Expect(utils.CMDLineArg(line, "empty")).To(Equal([]string{""}))
		})
		It("returns properly for stanzas without value", func() {
			Expect(utils.CMDLineArg(line, "rd.immuroot.debug")).To(HaveLen(1))
			Expect(utils.CMDLineArg(line, "missing")).To(BeEmpty())
		})
	})
	Context("ParseMount", func() {
		It("Returns disk path by LABEL", func() {
			Expect(utils.ParseMount("LABEL=MY_LABEL")).To(Equal("/dev/disk/by-label/MY_LABEL"))
		})
		It("Returns disk path by UUID", func() {
			Expect(utils.ParseMount("UUID=9999")).To(Equal("/dev/disk/by-uuid/9999"))
		})
		It("Returns disk path by PARTUUID", func() {
			Expect(utils.ParseMount("PARTUUID=abcd-02")).To(Equal("/dev/disk/by-partuuid/abcd-02"))
		})
		It("Returns disk path by PARTLABEL", func() {
			Expect(utils.ParseMount("PARTLABEL=root")).To(Equal("/dev/disk/by-partlabel/root"))
		})
		It("Leaves device paths alone", func() {
			Expect(utils.ParseMount("/dev/vda2")).To(Equal("/dev/vda2"))
			Expect(utils.ParseMount("10.0.0.1:/export")).To(Equal("10.0.0.1:/export"))
		})
	})
	Context("Filesystems", func() {
		var fs vfs.FS
		var cleanup func()

		BeforeEach(func() {
			var err error
			fs, cleanup, err = vfst.NewTestFS(map[string]interface{}{
				constants.FilesystemsPath: "nodev\tsysfs\nnodev\ttmpfs\n\text4\nnodev\tnfs\n\tvfat\n\txfs\n",
			})
			Expect(err).ToNot(HaveOccurred())
		})
		AfterEach(func() {
			cleanup()
		})

		It("lists only block device filesystems in order", func() {
			fss, err := utils.Filesystems(fs)
			Expect(err).ToNot(HaveOccurred())
			Expect(fss).To(Equal([]string{"ext4", "vfat", "xfs"}))
		})
		It("tells nodev filesystems apart", func() {
			Expect(utils.IsNodev(fs, "nfs")).To(BeTrue())
			Expect(utils.IsNodev(fs, "tmpfs")).To(BeTrue())
			Expect(utils.IsNodev(fs, "ext4")).To(BeFalse())
			Expect(utils.IsNodev(fs, "btrfs")).To(BeFalse())
		})
		It("fails if the kernel list is missing", func() {
			Expect(fs.Remove(constants.FilesystemsPath)).To(Succeed())
			_, err := utils.Filesystems(fs)
			Expect(err).To(HaveOccurred())
			Expect(utils.IsNodev(fs, "nfs")).To(BeFalse())
		})
	})
	Context("LoadSettings", func() {
		var tmpDir string

		BeforeEach(func() {
			var err error
			tmpDir, err = os.MkdirTemp("", "")
			Expect(err).ToNot(HaveOccurred())
		})
		AfterEach(func() {
			_ = os.RemoveAll(tmpDir)
		})

		It("returns defaults without an env file", func() {
			s, err := utils.LoadSettings(filepath.Join(tmpDir, "missing.env"))
			Expect(err).ToNot(HaveOccurred())
			Expect(s.InitArgs).To(BeEmpty())
			Expect(s.MountTimeout).To(Equal(constants.DefaultMountTimeout))
		})
		It("parses init args and timeout", func() {
			file := filepath.Join(tmpDir, "immuroot.env")
			err := os.WriteFile(file, []byte("IMMUROOT_INIT_ARGS=\"--log-level debug 'unit=multi user.target'\"\nIMMUROOT_MOUNT_TIMEOUT=90s\n"), os.ModePerm)
			Expect(err).ToNot(HaveOccurred())
			s, err := utils.LoadSettings(file)
			Expect(err).ToNot(HaveOccurred())
			Expect(s.InitArgs).To(Equal([]string{"--log-level", "debug", "unit=multi user.target"}))
			Expect(s.MountTimeout).To(Equal(90 * time.Second))
		})
		It("fails on a bad timeout", func() {
			file := filepath.Join(tmpDir, "immuroot.env")
			err := os.WriteFile(file, []byte("IMMUROOT_MOUNT_TIMEOUT=soon\n"), os.ModePerm)
			Expect(err).ToNot(HaveOccurred())
			_, err = utils.LoadSettings(file)
			Expect(err).To(MatchError(ContainSubstring("IMMUROOT_MOUNT_TIMEOUT")))
		})
	})
	Context("MountToFstab", func() {
		It("Generates the proper fstab config", func() {
			m := mount.Mount{
				Type:    "nfs",
				Source:  "10.0.0.1:/export",
				Options: []string{"ro", "addr=10.0.0.1"},
			}
			fstab := utils.MountToFstab(m)
			fstab.File = "/"
			// Options can be shown in whatever order, so regexp that
			Expect(fstab.String()).To(MatchRegexp("10.0.0.1:/export / nfs (ro|addr=10.0.0.1),(addr=10.0.0.1|ro) 0 0"))
			Expect(fstab.MntOps).To(HaveKeyWithValue("ro", ""))
			Expect(fstab.MntOps).To(HaveKeyWithValue("addr", "10.0.0.1"))
		})
	})
})
