package builtins

import (
	"encoding/base64"
	"encoding/hex"

	"github.com/pmatos/jsse/internal/evaluator"
	"github.com/pmatos/jsse/internal/ops"
	"github.com/pmatos/jsse/internal/runtime"
)

// installUint8Codecs builds the Base64/Hex round-trip pair (§8, the
// stage-3 Uint8Array proposal): Uint8Array.fromBase64/.fromHex as static
// constructors, .prototype.toBase64/.toHex as the inverse, layered over
// Go's encoding/base64 and encoding/hex rather than a hand-rolled codec.
func (c *ctx) installUint8Codecs(proto *runtime.Object, ctorObj *runtime.Object, protoID runtime.ObjectID, name string) {
	ev := c.ev

	c.method(proto, "toBase64", 1, func(interp any, this runtime.Value, args []runtime.Value) runtime.Completion {
		info, err := typedArrayData(ev, this)
		if err != nil {
			return ev.ThrowCompletion(err)
		}
		alphabet, omitPadding, err := base64Options(ev, arg(args, 0))
		if err != nil {
			return ev.ThrowCompletion(err)
		}
		enc := base64Encoding(alphabet, omitPadding)
		bytes := info.Buffer.Data[info.ByteOffset : info.ByteOffset+info.ByteLength]
		return runtime.NormalC(runtime.StringFromGo(enc.EncodeToString(bytes)))
	})
	c.method(proto, "toHex", 0, func(interp any, this runtime.Value, args []runtime.Value) runtime.Completion {
		info, err := typedArrayData(ev, this)
		if err != nil {
			return ev.ThrowCompletion(err)
		}
		bytes := info.Buffer.Data[info.ByteOffset : info.ByteOffset+info.ByteLength]
		return runtime.NormalC(runtime.StringFromGo(hex.EncodeToString(bytes)))
	})

	c.method(ctorObj, "fromBase64", 1, func(interp any, this runtime.Value, args []runtime.Value) runtime.Completion {
		s, err := ev.ToStringValue(arg(args, 0))
		if err != nil {
			return ev.ThrowCompletion(err)
		}
		alphabet, lastChunkHandling, err := fromBase64Options(ev, arg(args, 1))
		if err != nil {
			return ev.ThrowCompletion(err)
		}
		data, err := decodeBase64(ev, s.Go(), alphabet, lastChunkHandling)
		if err != nil {
			return ev.ThrowCompletion(err)
		}
		return runtime.NormalC(newUint8ArrayFromBytes(ev, protoID, name, data))
	})
	c.method(ctorObj, "fromHex", 1, func(interp any, this runtime.Value, args []runtime.Value) runtime.Completion {
		s, err := ev.ToStringValue(arg(args, 0))
		if err != nil {
			return ev.ThrowCompletion(err)
		}
		data, decErr := hex.DecodeString(s.Go())
		if decErr != nil {
			read := 0
			if _, ok := decErr.(hex.InvalidByteError); ok {
				decoded, _ := hex.Decode(make([]byte, len(s.Go())/2), []byte(s.Go()))
				read = 2 * decoded
			} else if decErr == hex.ErrLength {
				read = len(s.Go()) - 1
			}
			return ev.ThrowCompletion(syntaxErrWithRead(ev, "invalid hex string", read))
		}
		return runtime.NormalC(newUint8ArrayFromBytes(ev, protoID, name, data))
	})
}

func newUint8ArrayFromBytes(ev *evaluator.Evaluator, protoID runtime.ObjectID, name string, data []byte) runtime.Value {
	buf := &runtime.ArrayBufferData{Data: data, MaxByteLength: -1}
	obj := runtime.NewObject(name, &protoID)
	obj.TypedArrayInfo = &runtime.TypedArrayInfo{Kind: runtime.ElemUint8, Buffer: buf, ByteOffset: 0, ByteLength: len(data), Length: len(data)}
	id := ev.Heap_.Allocate(obj)
	return runtime.Object(id)
}

// base64Encoding resolves the alphabet/padding combination to one of Go's
// four base64.Encoding variants.
func base64Encoding(alphabet string, omitPadding bool) *base64.Encoding {
	enc := base64.StdEncoding
	if alphabet == "base64url" {
		enc = base64.URLEncoding
	}
	if omitPadding {
		enc = enc.WithPadding(base64.NoPadding)
	}
	return enc
}

func base64Options(ev *evaluator.Evaluator, v runtime.Value) (alphabet string, omitPadding bool, err error) {
	alphabet = "base64"
	if !v.IsObject() {
		return alphabet, false, nil
	}
	if av, getErr := ev.GetProperty(v, "alphabet"); getErr == nil && !av.IsUndefined() {
		s, convErr := ev.ToStringValue(av)
		if convErr != nil {
			return "", false, convErr
		}
		alphabet = s.Go()
		if alphabet != "base64" && alphabet != "base64url" {
			return "", false, rangeErr(ev, "Invalid alphabet option: "+alphabet)
		}
	}
	if ov, getErr := ev.GetProperty(v, "omitPadding"); getErr == nil && !ov.IsUndefined() {
		omitPadding = ops.ToBoolean(ov)
	}
	return alphabet, omitPadding, nil
}

func fromBase64Options(ev *evaluator.Evaluator, v runtime.Value) (alphabet, lastChunkHandling string, err error) {
	alphabet = "base64"
	lastChunkHandling = "loose"
	if !v.IsObject() {
		return alphabet, lastChunkHandling, nil
	}
	if av, getErr := ev.GetProperty(v, "alphabet"); getErr == nil && !av.IsUndefined() {
		s, convErr := ev.ToStringValue(av)
		if convErr != nil {
			return "", "", convErr
		}
		alphabet = s.Go()
		if alphabet != "base64" && alphabet != "base64url" {
			return "", "", rangeErr(ev, "Invalid alphabet option: "+alphabet)
		}
	}
	if lv, getErr := ev.GetProperty(v, "lastChunkHandling"); getErr == nil && !lv.IsUndefined() {
		s, convErr := ev.ToStringValue(lv)
		if convErr != nil {
			return "", "", convErr
		}
		lastChunkHandling = s.Go()
		switch lastChunkHandling {
		case "loose", "strict", "stop-before-partial":
		default:
			return "", "", rangeErr(ev, "Invalid lastChunkHandling option: "+lastChunkHandling)
		}
	}
	return alphabet, lastChunkHandling, nil
}

// decodeBase64 trims a trailing partial chunk per lastChunkHandling before
// delegating to Go's decoder, since encoding/base64 itself only knows
// strict-vs-not, not the three-way loose/strict/stop-before-partial split.
func decodeBase64(ev *evaluator.Evaluator, s string, alphabet, lastChunkHandling string) ([]byte, error) {
	enc := base64.StdEncoding
	if alphabet == "base64url" {
		enc = base64.URLEncoding
	}
	trimmed := s
	for len(trimmed) > 0 && trimmed[len(trimmed)-1] == '=' {
		trimmed = trimmed[:len(trimmed)-1]
	}
	remainder := len(trimmed) % 4
	if remainder == 1 {
		return nil, syntaxErrWithRead(ev, "malformed base64 input", len(trimmed)-1)
	}
	switch lastChunkHandling {
	case "stop-before-partial":
		if remainder != 0 {
			trimmed = trimmed[:len(trimmed)-remainder]
		}
	case "strict":
		if len(s) != len(trimmed) && len(s)%4 != 0 {
			return nil, syntaxErrWithRead(ev, "incorrect padding", len(trimmed))
		}
	}
	data, decErr := enc.WithPadding(base64.NoPadding).DecodeString(trimmed)
	if decErr != nil {
		read := 0
		if ce, ok := decErr.(base64.CorruptInputError); ok {
			read = int(ce)
		}
		return nil, syntaxErrWithRead(ev, "malformed base64 input", read)
	}
	return data, nil
}

// syntaxErrWithRead builds a SyntaxError carrying a "read" property: the
// count of input code units consumed before the decoder gave up, the
// diagnostic the stage-3 proposal's decode errors are required to expose.
func syntaxErrWithRead(ev *evaluator.Evaluator, msg string, read int) error {
	v := ev.NewSyntaxError(msg)
	if v.IsObject() {
		obj := ev.Heap_.Get(v.AsObjectID())
		obj.DefineOwn("read", runtime.DataProperty(runtime.Number(float64(read)), true, false, true))
	}
	return &ops.Thrown{Completion: runtime.ThrowC(v)}
}
