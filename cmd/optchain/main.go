package main

import (
	"context"
	"optchain-archive/cmd/optchain/commands"
	"optchain-archive/lib/osutil"
)

func main() {
	ctx, cancel := osutil.SignalContext(context.Background())
	defer cancel()

	commands.ExecuteContext(ctx)
}
