package core

import glog "github.com/goliatone/go-logger/glog"

var (
	_ Confirmer    = Preconfirmed(true)
	_ Confirmer    = ConfirmerFunc(nil)
	_ JSONAccessor = JSONPathAccessor{}

	_ Logger         = glog.Nop()
	_ LoggerProvider = glog.ProviderFromLogger(glog.Nop())
)
