package ubuntu

import (
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/kubestrap/kubestrap/pkg/constants"
	tu "github.com/kubestrap/kubestrap/pkg/testutils"
	"github.com/kubestrap/kubestrap/pkg/utils"
)

type AptTestSuite struct {
	suite.Suite
	Executor    *tu.MockExecutor
	OldExecutor *utils.Executor
	OldFS       *utils.FileSystem
}

func (s *AptTestSuite) SetupTest() {
	s.Executor = &tu.MockExecutor{}
	s.OldExecutor = &utils.Exec
	utils.Exec = s.Executor
	s.OldFS = &utils.FS
	utils.FS = utils.NewMemMapFS()
}

func (s *AptTestSuite) TeardownTest() {
	utils.Exec = *s.OldExecutor
	utils.FS = *s.OldFS
}

func (s *AptTestSuite) TestInstallKubernetesTools() {
	assert := s.Require()

	s.Executor.On("Run", true, constants.AptGetCmd, "install", "-y",
		"kubelet=1.29.3-1.1", "kubeadm=1.29.3-1.1", "kubectl=1.29.3-1.1").
		Return("", nil)
	s.Executor.On("Run", true, constants.AptMarkCmd, "hold",
		"kubelet", "kubeadm", "kubectl").
		Return("", nil)

	assert.NoError(InstallKubernetesTools("1.29.3"))
	s.Executor.AssertExpectations(s.T())
}

func (s *AptTestSuite) TestConfigureRepositorySkipsExistingKeyring() {
	assert := s.Require()

	// When the keyring is already installed, only the sources list is
	// refreshed and apt update runs. No key download happens.
	assert.NoError(utils.FS.MkdirAll("/etc/apt/keyrings", 0755))
	assert.NoError(utils.FS.WriteFile(constants.AptKeyringPath, []byte("key"), 0644))

	s.Executor.On("Run", true, constants.AptGetCmd, "update").Return("", nil)

	assert.NoError(ConfigureKubernetesRepository("v1.29"))
	s.Executor.AssertExpectations(s.T())

	sources, err := utils.FS.ReadFile(constants.AptSourcesPath)
	assert.NoError(err)
	assert.Equal("deb [signed-by=/etc/apt/keyrings/kubernetes-apt-keyring.gpg] "+
		"https://pkgs.k8s.io/core:/stable:/v1.29/deb/ /\n", string(sources))
}

func TestApt(t *testing.T) {
	suite.Run(t, new(AptTestSuite))
}
