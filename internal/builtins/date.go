package builtins

import (
	"time"

	"github.com/apfeltee/ecma5go/internal/object"
)

// installDate wires the Date constructor and Date.prototype (ES5 15.9).
// original_source has no dedicated Date translation unit to ground this
// against; Internal stores the instant as a float64 of milliseconds since
// the Unix epoch, ES5's own Date model, converted to/from time.Time only at
// the Go boundary.
func installDate(ctx *object.Context, global, proto *object.Object) {
	ctorFn := NativeFunctionAt(ctx, "Date", 7, func(ctx *object.Context) object.Value {
		if !ctx.Construct {
			return object.InlineString(time.Now().UTC().Format(time.RFC1123))
		}
		var ms float64
		switch len(ctx.Args) {
		case 0:
			ms = float64(time.Now().UnixNano()) / 1e6
		case 1:
			if ctx.Args[0].IsString() {
				t, err := time.Parse(time.RFC3339, ctx.Args[0].StringValue())
				if err != nil {
					ms = nan()
				} else {
					ms = float64(t.UnixNano()) / 1e6
				}
			} else {
				ms = ctx.ToBinary(ctx.Args[0])
			}
		default:
			get := func(i int, def int) int {
				if i < len(ctx.Args) {
					return int(ctx.ToInteger(ctx.Args[i]))
				}
				return def
			}
			year, month, day := get(0, 1970), get(1, 0), get(2, 1)
			hour, min, sec, msec := get(3, 0), get(4, 0), get(5, 0), get(6, 0)
			t := time.Date(year, time.Month(month+1), day, hour, min, sec, msec*1e6, time.UTC)
			ms = float64(t.UnixNano()) / 1e6
		}
		o := object.New(object.KindDate, ctx.Proto.Date)
		o.Internal = ms
		return object.ObjectValue(object.TagDate, o)
	})
	wireConstructor(ctx, global, "Date", ctorFn, proto)

	defineMethod(ctx, ctorFn, "now", 0, func(ctx *object.Context) object.Value {
		return object.Bin(float64(time.Now().UnixNano()) / 1e6)
	})
	defineMethod(ctx, ctorFn, "parse", 1, func(ctx *object.Context) object.Value {
		t, err := time.Parse(time.RFC3339, ctx.ToString(arg(ctx, 0)))
		if err != nil {
			return object.Bin(nan())
		}
		return object.Bin(float64(t.UnixNano()) / 1e6)
	})

	defineMethod(ctx, proto, "getTime", 0, func(ctx *object.Context) object.Value { return object.Bin(selfDateMS(ctx)) })
	defineMethod(ctx, proto, "valueOf", 0, func(ctx *object.Context) object.Value { return object.Bin(selfDateMS(ctx)) })
	defineMethod(ctx, proto, "setTime", 1, func(ctx *object.Context) object.Value {
		ms := ctx.ToBinary(arg(ctx, 0))
		thisObj(ctx).Internal = ms
		return object.Bin(ms)
	})
	defineMethod(ctx, proto, "toString", 0, func(ctx *object.Context) object.Value {
		return object.InlineString(selfDateTime(ctx).Format(time.RFC1123))
	})
	defineMethod(ctx, proto, "toISOString", 0, func(ctx *object.Context) object.Value {
		return object.InlineString(selfDateTime(ctx).Format(time.RFC3339Nano))
	})
	defineMethod(ctx, proto, "toJSON", 0, func(ctx *object.Context) object.Value {
		return object.InlineString(selfDateTime(ctx).Format(time.RFC3339Nano))
	})

	field := func(name string, extract func(time.Time) int) {
		defineMethod(ctx, proto, name, 0, func(ctx *object.Context) object.Value {
			return object.Int(int32(extract(selfDateTime(ctx))))
		})
	}
	field("getFullYear", func(t time.Time) int { return t.Year() })
	field("getMonth", func(t time.Time) int { return int(t.Month()) - 1 })
	field("getDate", func(t time.Time) int { return t.Day() })
	field("getDay", func(t time.Time) int { return int(t.Weekday()) })
	field("getHours", func(t time.Time) int { return t.Hour() })
	field("getMinutes", func(t time.Time) int { return t.Minute() })
	field("getSeconds", func(t time.Time) int { return t.Second() })
	field("getMilliseconds", func(t time.Time) int { return t.Nanosecond() / 1e6 })
	field("getUTCFullYear", func(t time.Time) int { return t.UTC().Year() })
	field("getUTCMonth", func(t time.Time) int { return int(t.UTC().Month()) - 1 })
	field("getUTCDate", func(t time.Time) int { return t.UTC().Day() })
	field("getUTCHours", func(t time.Time) int { return t.UTC().Hour() })
	field("getTimezoneOffset", func(t time.Time) int { _, off := t.Zone(); return -off / 60 })
}

func selfDateMS(ctx *object.Context) float64 {
	if ms, ok := thisObj(ctx).Internal.(float64); ok {
		return ms
	}
	return nan()
}

func selfDateTime(ctx *object.Context) time.Time {
	ms := selfDateMS(ctx)
	return time.Unix(0, int64(ms*1e6)).UTC()
}
