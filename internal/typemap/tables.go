package typemap

import "github.com/tablenote/tablenote/internal/schema"

var dialects = map[Dialect]dialectTable{
	MySQL:     mysqlTable,
	Postgres:  postgresTable,
	SQLite:    sqliteTable,
	SQLServer: sqlserverTable,
	Oracle:    oracleTable,
}

var mysqlTable = dialectTable{
	bases: map[string]string{
		"tinyint":   BaseInt,
		"smallint":  BaseInt,
		"mediumint": BaseInt,
		"int":       BaseInt,
		"integer":   BaseInt,
		"bigint":    BaseInt,
		"year":      BaseInt,

		"float":  BaseFloat,
		"double": BaseFloat,
		"real":   BaseFloat,

		"decimal": BaseDecimal,
		"numeric": BaseDecimal,

		"bit":     BaseBool,
		"bool":    BaseBool,
		"boolean": BaseBool,

		"char":    BaseString,
		"varchar": BaseString,
		"enum":    BaseString,
		"set":     BaseString,

		"tinytext":   BaseText,
		"text":       BaseText,
		"mediumtext": BaseText,
		"longtext":   BaseText,

		"date":      BaseDate,
		"time":      BaseTime,
		"datetime":  BaseDateTime,
		"timestamp": BaseDateTime,

		"binary":     BaseBinary,
		"varbinary":  BaseBinary,
		"tinyblob":   BaseBinary,
		"blob":       BaseBinary,
		"mediumblob": BaseBinary,
		"longblob":   BaseBinary,

		"json": BaseJSON,
	},
	hints: map[string]string{
		"enum":      "enum",
		"set":       "set",
		"year":      "year",
		"timestamp": "timestamp",
	},
	preserveLength: map[string]bool{
		BaseString: true,
		BaseBinary: true,
	},
	exceptions: []exception{
		// TINYINT(1) is the conventional boolean flag.
		func(name string, length, _ *int) (schema.MappedType, bool) {
			if name == "tinyint" && length != nil && *length == 1 {
				return schema.MappedType{Base: BaseBool}, true
			}
			return schema.MappedType{}, false
		},
	},
}

var postgresTable = dialectTable{
	bases: map[string]string{
		"smallint": BaseInt,
		"int2":     BaseInt,
		"integer":  BaseInt,
		"int":      BaseInt,
		"int4":     BaseInt,
		"bigint":   BaseInt,
		"int8":     BaseInt,

		"smallserial": BaseInt,
		"serial2":     BaseInt,
		"serial":      BaseInt,
		"serial4":     BaseInt,
		"bigserial":   BaseInt,
		"serial8":     BaseInt,

		"real":             BaseFloat,
		"float4":           BaseFloat,
		"double precision": BaseFloat,
		"float8":           BaseFloat,

		"numeric": BaseNumber,
		"decimal": BaseNumber,
		"money":   BaseDecimal,

		"boolean": BaseBool,
		"bool":    BaseBool,

		"character varying": BaseString,
		"varchar":           BaseString,
		"character":         BaseString,
		"char":              BaseString,
		"bpchar":            BaseString,

		"text":   BaseText,
		"citext": BaseText,

		"date":                        BaseDate,
		"time":                        BaseTime,
		"timetz":                      BaseTime,
		"time with time zone":         BaseTime,
		"time without time zone":      BaseTime,
		"timestamp":                   BaseDateTime,
		"timestamptz":                 BaseDateTime,
		"timestamp with time zone":    BaseDateTime,
		"timestamp without time zone": BaseDateTime,

		"bytea": BaseBinary,

		"json":  BaseJSON,
		"jsonb": BaseJSON,

		"uuid":     BaseString,
		"inet":     BaseString,
		"cidr":     BaseString,
		"macaddr":  BaseString,
		"macaddr8": BaseString,
		"interval": BaseString,
		"xml":      BaseText,
	},
	hints: map[string]string{
		"smallserial": "serial",
		"serial2":     "serial",
		"serial":      "serial",
		"serial4":     "serial",
		"bigserial":   "serial",
		"serial8":     "serial",

		"money":    "money",
		"jsonb":    "jsonb",
		"uuid":     "uuid",
		"inet":     "inet",
		"cidr":     "cidr",
		"macaddr":  "macaddr",
		"macaddr8": "macaddr",
		"interval": "interval",
		"xml":      "xml",

		"timestamptz":              "timezone",
		"timestamp with time zone": "timezone",
		"timetz":                   "timezone",
		"time with time zone":      "timezone",
	},
	preserveLength: map[string]bool{
		BaseString: true,
	},
	exceptions: []exception{
		// numeric(p, s): the scale decides between integer and
		// fixed-point; without a scale it stays a generic number.
		func(name string, _, scale *int) (schema.MappedType, bool) {
			if (name != "numeric" && name != "decimal") || scale == nil {
				return schema.MappedType{}, false
			}
			if *scale == 0 {
				return schema.MappedType{Base: BaseInt}, true
			}
			return schema.MappedType{Base: BaseDecimal}, true
		},
	},
}

var sqliteTable = dialectTable{
	bases: map[string]string{
		"integer":   BaseInt,
		"int":       BaseInt,
		"tinyint":   BaseInt,
		"smallint":  BaseInt,
		"mediumint": BaseInt,
		"bigint":    BaseInt,

		"real":   BaseFloat,
		"double": BaseFloat,
		"float":  BaseFloat,

		"numeric": BaseDecimal,
		"decimal": BaseDecimal,

		"boolean": BaseBool,
		"bool":    BaseBool,

		"char":              BaseString,
		"nchar":             BaseString,
		"varchar":           BaseString,
		"nvarchar":          BaseString,
		"varying character": BaseString,

		"text": BaseText,
		"clob": BaseText,

		"blob": BaseBinary,

		"date":      BaseDate,
		"time":      BaseTime,
		"datetime":  BaseDateTime,
		"timestamp": BaseDateTime,

		"json": BaseJSON,
	},
	hints: map[string]string{},
	preserveLength: map[string]bool{
		BaseString: true,
	},
}

var sqlserverTable = dialectTable{
	bases: map[string]string{
		"tinyint":  BaseInt,
		"smallint": BaseInt,
		"int":      BaseInt,
		"bigint":   BaseInt,

		"bit": BaseBool,

		"decimal":    BaseDecimal,
		"numeric":    BaseDecimal,
		"money":      BaseDecimal,
		"smallmoney": BaseDecimal,

		"float": BaseFloat,
		"real":  BaseFloat,

		"char":     BaseString,
		"varchar":  BaseString,
		"nchar":    BaseString,
		"nvarchar": BaseString,

		"text":  BaseText,
		"ntext": BaseText,
		"xml":   BaseText,

		"binary":    BaseBinary,
		"varbinary": BaseBinary,
		"image":     BaseBinary,

		"date":           BaseDate,
		"time":           BaseTime,
		"datetime":       BaseDateTime,
		"datetime2":      BaseDateTime,
		"smalldatetime":  BaseDateTime,
		"datetimeoffset": BaseDateTime,

		"uniqueidentifier": BaseString,
		"json":             BaseJSON,
	},
	hints: map[string]string{
		"money":            "money",
		"smallmoney":       "money",
		"xml":              "xml",
		"uniqueidentifier": "uuid",
		"datetimeoffset":   "timezone",
	},
	preserveLength: map[string]bool{
		BaseString: true,
		BaseBinary: true,
	},
	exceptions: []exception{
		// A length of -1 is the catalog spelling of VARCHAR(MAX) and
		// friends: unbounded text, no length to preserve.
		func(name string, length, _ *int) (schema.MappedType, bool) {
			if length == nil || *length != -1 {
				return schema.MappedType{}, false
			}
			switch name {
			case "varchar", "nvarchar", "char", "nchar":
				return schema.MappedType{Base: BaseText}, true
			case "varbinary", "binary":
				return schema.MappedType{Base: BaseBinary}, true
			}
			return schema.MappedType{}, false
		},
	},
}

var oracleTable = dialectTable{
	bases: map[string]string{
		"integer":  BaseInt,
		"int":      BaseInt,
		"smallint": BaseInt,

		"number": BaseNumber,

		"float":         BaseFloat,
		"binary_float":  BaseFloat,
		"binary_double": BaseFloat,

		"varchar2":  BaseString,
		"varchar":   BaseString,
		"nvarchar2": BaseString,
		"char":      BaseString,
		"nchar":     BaseString,

		"clob":  BaseText,
		"nclob": BaseText,
		"long":  BaseText,

		"blob":     BaseBinary,
		"raw":      BaseBinary,
		"long raw": BaseBinary,

		// Oracle DATE carries a time component.
		"date":                           BaseDateTime,
		"timestamp":                      BaseDateTime,
		"timestamp with time zone":       BaseDateTime,
		"timestamp with local time zone": BaseDateTime,

		"rowid":   BaseString,
		"urowid":  BaseString,
		"xmltype": BaseText,
	},
	hints: map[string]string{
		"rowid":                          "rowid",
		"urowid":                         "rowid",
		"xmltype":                        "xml",
		"timestamp with time zone":       "timezone",
		"timestamp with local time zone": "timezone",
	},
	preserveLength: map[string]bool{
		BaseString: true,
		BaseBinary: true,
	},
	exceptions: []exception{
		// NUMBER(p, s): scale 0 is an integer, a positive scale is
		// fixed-point. NUMBER without a scale stays generic.
		func(name string, _, scale *int) (schema.MappedType, bool) {
			if name != "number" || scale == nil {
				return schema.MappedType{}, false
			}
			if *scale == 0 {
				return schema.MappedType{Base: BaseInt}, true
			}
			return schema.MappedType{Base: BaseDecimal}, true
		},
	},
}
