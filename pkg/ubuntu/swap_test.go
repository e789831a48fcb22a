package ubuntu

import (
	"testing"

	"github.com/lithammer/dedent"
	"github.com/stretchr/testify/suite"

	"github.com/kubestrap/kubestrap/pkg/constants"
	tu "github.com/kubestrap/kubestrap/pkg/testutils"
	"github.com/kubestrap/kubestrap/pkg/utils"
)

type SwapTestSuite struct {
	suite.Suite
	Executor    *tu.MockExecutor
	OldExecutor *utils.Executor
	OldFS       *utils.FileSystem
}

func (s *SwapTestSuite) SetupTest() {
	s.Executor = &tu.MockExecutor{}
	s.OldExecutor = &utils.Exec
	utils.Exec = s.Executor
	s.OldFS = &utils.FS
	utils.FS = utils.NewMemMapFS()
}

func (s *SwapTestSuite) TeardownTest() {
	utils.Exec = *s.OldExecutor
	utils.FS = *s.OldFS
}

func (s *SwapTestSuite) TestRemoveSwapFromFstab() {
	assert := s.Require()
	fstab := dedent.Dedent(`
		# /etc/fstab: static file system information.
		UUID=abcd-1234 / ext4 errors=remount-ro 0 1
		/swap.img none swap sw 0 0
		UUID=ef56-7890 /boot ext4 defaults 0 2
		`)[1:]
	expected := dedent.Dedent(`
		# /etc/fstab: static file system information.
		UUID=abcd-1234 / ext4 errors=remount-ro 0 1
		# /swap.img none swap sw 0 0
		UUID=ef56-7890 /boot ext4 defaults 0 2
		`)[1:]

	assert.NoError(utils.FS.WriteFile(constants.FstabPath, []byte(fstab), 0644))
	assert.NoError(RemoveSwapFromFstab(constants.FstabPath))

	actual, err := utils.FS.ReadFile(constants.FstabPath)
	assert.NoError(err)
	assert.Equal(expected, string(actual))
}

func (s *SwapTestSuite) TestRemoveSwapFromFstabAlreadyCommented() {
	assert := s.Require()
	fstab := dedent.Dedent(`
		UUID=abcd-1234 / ext4 errors=remount-ro 0 1
		# /swap.img none swap sw 0 0
		`)[1:]

	assert.NoError(utils.FS.WriteFile(constants.FstabPath, []byte(fstab), 0644))
	assert.NoError(RemoveSwapFromFstab(constants.FstabPath))

	actual, err := utils.FS.ReadFile(constants.FstabPath)
	assert.NoError(err)
	assert.Equal(fstab, string(actual), "Commented entries should be left alone")
}

func (s *SwapTestSuite) TestDisableSwap() {
	assert := s.Require()
	assert.NoError(utils.FS.WriteFile(constants.FstabPath,
		[]byte("/swap.img none swap sw 0 0\n"), 0644))

	s.Executor.On("Run", true, constants.SwapoffCmd, "-a").Return("", nil)

	assert.NoError(DisableSwap())
	s.Executor.AssertExpectations(s.T())

	actual, err := utils.FS.ReadFile(constants.FstabPath)
	assert.NoError(err)
	assert.Equal("# /swap.img none swap sw 0 0\n", string(actual))
}

func TestSwap(t *testing.T) {
	suite.Run(t, new(SwapTestSuite))
}
