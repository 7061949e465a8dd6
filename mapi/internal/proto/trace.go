package proto

import (
	"flag"
	"fmt"

	"github.com/MonetDB/monetdb-go/mapi/internal/trace"
)

var wireTrace = trace.New("mapi", "wire")
var wireTraceFlag = trace.NewFlag(wireTrace)

var dispatchTrace = trace.New("mapi", "dispatch")
var dispatchTraceFlag = trace.NewFlag(dispatchTrace)

var transferTrace = trace.New("mapi", "transfer")
var transferTraceFlag = trace.NewFlag(transferTrace)

func init() {
	flag.Var(wireTraceFlag, "mapi.wire", "enable mapi wire line trace")
	flag.Var(dispatchTraceFlag, "mapi.dispatch", "enable mapi response dispatch trace")
	flag.Var(transferTraceFlag, "mapi.transfer", "enable mapi file-transfer trace")
}

func traceWire(format string, v ...interface{}) { wireTrace.Output(2, fmt.Sprintf(format, v...)) }

func traceDispatch(format string, v ...interface{}) { dispatchTrace.Output(2, fmt.Sprintf(format, v...)) }

func traceTransfer(format string, v ...interface{}) { transferTrace.Output(2, fmt.Sprintf(format, v...)) }
