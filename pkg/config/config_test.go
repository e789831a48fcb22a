package config

import (
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/suite"

	"github.com/kubestrap/kubestrap/pkg/apis/kubestrap/v1alpha1"
)

type ConfigTestSuite struct {
	suite.Suite
	cmd  *cobra.Command
	spec *v1alpha1.BootstrapClusterSpec
}

func (s *ConfigTestSuite) SetupTest() {
	viper.Reset()
	s.cmd = &cobra.Command{Use: "test"}
	s.spec = &v1alpha1.BootstrapClusterSpec{}
	ConfigureClusterCommand(s.cmd.Flags(), s.spec)
	// The ip flag default depends on the host; pin it so the decode is
	// deterministic.
	s.Require().NoError(s.cmd.Flags().Set("ip", "192.168.99.2"))
}

func (s *ConfigTestSuite) TestFlagsAreDecoded() {
	assert := s.Require()

	assert.NoError(s.cmd.Flags().Set("docker-user", "flaguser"))
	assert.NoError(s.cmd.Flags().Set("docker-token", "flagtoken"))
	UpPersistentPreRun(s.cmd, nil)

	assert.NoError(DecodeClusterConfig(s.spec))
	assert.Equal("flaguser", s.spec.DockerAuth.User)
	assert.Equal("flagtoken", s.spec.DockerAuth.Token)
}

func (s *ConfigTestSuite) TestEnvironmentWinsOverFlags() {
	assert := s.Require()

	s.T().Setenv("DOCKER_USER", "envuser")
	s.T().Setenv("DOCKER_TOKEN", "envtoken")

	assert.NoError(s.cmd.Flags().Set("docker-user", "flaguser"))
	assert.NoError(s.cmd.Flags().Set("docker-token", "flagtoken"))
	UpPersistentPreRun(s.cmd, nil)

	assert.NoError(DecodeClusterConfig(s.spec))
	assert.Equal("envuser", s.spec.DockerAuth.User, "The environment must win over the flag")
	assert.Equal("envtoken", s.spec.DockerAuth.Token)
}

func (s *ConfigTestSuite) TestApiHostFromEnvironment() {
	assert := s.Require()

	s.T().Setenv("API_HOST", "cluster.example.com")
	UpPersistentPreRun(s.cmd, nil)

	assert.NoError(DecodeClusterConfig(s.spec))
	assert.Equal("cluster.example.com", s.spec.ApiHost)
}

func (s *ConfigTestSuite) TestAdvertiseAddressFollowsInterface() {
	assert := s.Require()

	// Fresh command without the pinned ip flag: the advertise address
	// must be derived from the selected interface.
	cmd := &cobra.Command{Use: "test"}
	spec := &v1alpha1.BootstrapClusterSpec{}
	ConfigureClusterCommand(cmd.Flags(), spec)

	assert.NoError(cmd.Flags().Set("network-interface", "lo"))
	UpPersistentPreRun(cmd, nil)

	assert.NoError(DecodeClusterConfig(spec))
	assert.Equal("lo", spec.NetworkInterface)
	assert.Equal("127.0.0.1", spec.Ip.String())
}

func (s *ConfigTestSuite) TestExplicitIpWinsOverInterface() {
	assert := s.Require()

	assert.NoError(s.cmd.Flags().Set("network-interface", "lo"))
	UpPersistentPreRun(s.cmd, nil)

	assert.NoError(DecodeClusterConfig(s.spec))
	assert.Equal("192.168.99.2", s.spec.Ip.String())
}

func (s *ConfigTestSuite) TestValidateCredentials() {
	assert := s.Require()

	spec := &v1alpha1.BootstrapClusterSpec{}
	assert.Error(ValidateCredentials(spec), "Missing Docker Hub credentials must be rejected")

	spec.DockerAuth = v1alpha1.RegistryAuth{User: "jane"}
	assert.Error(ValidateCredentials(spec), "A user without a token must be rejected")

	spec.DockerAuth.Token = "hub-token"
	assert.NoError(ValidateCredentials(spec))
}

func TestConfig(t *testing.T) {
	suite.Run(t, new(ConfigTestSuite))
}
