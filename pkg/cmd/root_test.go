/*
Copyright © 2024 The kubestrap authors

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestWaitContextWithTimeout(t *testing.T) {
	ctx, cancel := waitContext(context.Background(), time.Minute)
	defer cancel()

	deadline, ok := ctx.Deadline()
	require.True(t, ok)
	require.WithinDuration(t, time.Now().Add(time.Minute), deadline, 5*time.Second)
}

func TestWaitContextZeroWaitsForever(t *testing.T) {
	ctx, cancel := waitContext(context.Background(), 0)
	defer cancel()

	_, ok := ctx.Deadline()
	require.False(t, ok, "a zero timeout must not set a deadline")
	require.NoError(t, ctx.Err())

	cancel()
	require.ErrorIs(t, ctx.Err(), context.Canceled)
}
