package agenttest

import "strings"

const (
	mockLambdasVar = "MOCK_LAMBDAS"
	virtualEnvVar  = "VIRTUAL_ENV"
)

// BuildEnv returns a copy of base prepared for an agent test process: lambda
// calls are mocked and any inherited virtualenv is dropped so the agent
// resolves its own dependencies. base is not modified.
func BuildEnv(base []string) []string {
	env := make([]string, 0, len(base)+1)
	for _, kv := range base {
		key, _, _ := strings.Cut(kv, "=")
		if key == virtualEnvVar || key == mockLambdasVar {
			continue
		}
		env = append(env, kv)
	}
	return append(env, mockLambdasVar+"=true")
}
