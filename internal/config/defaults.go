package config

import "time"

const (
	defaultWorkDir              = "."
	defaultLogDir               = "~/.local/share/cnpjscan/logs"
	defaultArtifactPrefix       = "CNPJ_consulta_incremental_"
	defaultArtifactDateLayout   = "02-01-2006"
	defaultReceitaWSBaseURL     = "https://receitaws.com.br/v1"
	defaultReceitaWSDays        = 7
	defaultReceitaWSTimeout     = 10
	defaultDatabaseDriver       = "oracle"
	defaultDatabasePort         = 1521
	defaultDatabaseTimeout      = 300
	defaultFlushEvery           = 10
	defaultFlushDelaySeconds    = 3
	defaultInsertTable          = "tabela"
	defaultLogFormat            = "console"
	defaultLogLevel             = "info"
	defaultCompanyActivityCodes = "4673700,4642702,4649406,4651601,4672900,4679604,4679699,4742300,4753900"
)

// DefaultActiveClientsQuery selects legal-entity clients with at least one
// order billed since the start of the month five months ago, excluding
// accounts registered as branches. The first column is the client id and the
// second the tax id stripped to alphanumerics.
const DefaultActiveClientsQuery = `SELECT
    CODCLI,
    REGEXP_REPLACE(cgcent, '[^0-9A-Za-z]', '') AS CNPJ
FROM
    pcclient
WHERE
    CODCLI IN (
        SELECT DISTINCT CODCLI
        FROM pcpedc
        WHERE DTFAT >= TRUNC(ADD_MONTHS(SYSDATE, -5), 'MM')
          AND DTFAT <= LAST_DAY(SYSDATE)
          AND CODCLI NOT IN (
              SELECT DISTINCT codcli
              FROM pcfilial
              WHERE codcli IS NOT NULL
          )
    )
    AND TIPOFJ = 'J'`

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			WorkDir: defaultWorkDir,
			LogDir:  defaultLogDir,
		},
		Artifact: Artifact{
			Prefix:     defaultArtifactPrefix,
			DateLayout: defaultArtifactDateLayout,
		},
		ReceitaWS: ReceitaWS{
			BaseURL:        defaultReceitaWSBaseURL,
			Days:           defaultReceitaWSDays,
			TimeoutSeconds: defaultReceitaWSTimeout,
		},
		Database: Database{
			Driver:         defaultDatabaseDriver,
			Query:          DefaultActiveClientsQuery,
			TimeoutSeconds: defaultDatabaseTimeout,
		},
		Classifier: Classifier{
			ReferenceCodes: defaultReferenceCodes(),
		},
		Workflow: Workflow{
			FlushEvery:        defaultFlushEvery,
			FlushDelaySeconds: defaultFlushDelaySeconds,
		},
		Output: Output{
			InsertTable: defaultInsertTable,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}

func defaultReferenceCodes() []string {
	return splitList(defaultCompanyActivityCodes)
}

// LookupTimeout returns the per-request lookup timeout.
func (c *Config) LookupTimeout() time.Duration {
	return time.Duration(c.ReceitaWS.TimeoutSeconds) * time.Second
}

// FlushDelay returns the pause applied after every checkpoint flush.
func (c *Config) FlushDelay() time.Duration {
	return time.Duration(c.Workflow.FlushDelaySeconds) * time.Second
}

// QueryTimeout returns the upper bound for the work-set query.
func (c *Config) QueryTimeout() time.Duration {
	return time.Duration(c.Database.TimeoutSeconds) * time.Second
}
