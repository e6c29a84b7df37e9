package signup

import "go.uber.org/fx"

var Module = fx.Module("signup.provisioner",
	fx.Provide(New),
)
