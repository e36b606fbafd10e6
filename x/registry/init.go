package registry

import (
	"encoding/hex"
	"encoding/json"

	"github.com/iov-one/valset"
	"github.com/iov-one/valset/errors"
	"github.com/iov-one/valset/x/valconfig"
)

const optKey = "registry"

// Initializer fulfils the Initializer interface to load data from the
// genesis file. It persists the registry configuration and the
// validator account records. Publishing the initial snapshot is not a
// genesis concern: the root authority runs Initialize explicitly once
// the system is wired.
type Initializer struct{}

var _ valset.Initializer = Initializer{}

// genesisAccount is the JSON shape of one validator account in the
// genesis file.
type genesisAccount struct {
	Address  valset.Address `json:"address"`
	Operator valset.Address `json:"operator"`
	Name     string         `json:"name"`
	Config   *genesisConfig `json:"config"`
}

type genesisConfig struct {
	ConsensusPubKey       hexData  `json:"consensus_pubkey"`
	ValidatorNetAddresses []string `json:"validator_net_addresses"`
	FullnodeNetAddresses  []string `json:"fullnode_net_addresses"`
}

// hexData decodes from a hex string, as genesis files keep all binary
// data in hex, not base64.
type hexData []byte

func (d *hexData) UnmarshalJSON(raw []byte) error {
	var enc string
	if err := json.Unmarshal(raw, &enc); err != nil {
		return errors.Wrap(errors.ErrInput, "cannot decode json")
	}
	val, err := hex.DecodeString(enc)
	if err != nil {
		return errors.Wrap(errors.ErrInput, "cannot decode hex")
	}
	*d = val
	return nil
}

// FromGenesis will parse initial registry info from genesis and save
// it to the database.
func (Initializer) FromGenesis(opts valset.Options, kv valset.KVStore) error {
	var genesis struct {
		Admin    valset.Address   `json:"admin"`
		Accounts []genesisAccount `json:"accounts"`
	}
	if err := opts.ReadOptions(optKey, &genesis); err != nil {
		return err
	}
	if genesis.Admin == nil && len(genesis.Accounts) == 0 {
		// nothing to do for this extension
		return nil
	}

	if err := saveConf(kv, &Configuration{Admin: genesis.Admin}); err != nil {
		return err
	}

	bucket := valconfig.NewBucket()
	for i, acct := range genesis.Accounts {
		va := valconfig.ValidatorAccount{
			Address:  acct.Address,
			Operator: acct.Operator,
			Name:     acct.Name,
		}
		if acct.Config != nil {
			va.Config = &valconfig.Config{
				ConsensusPubKey:       acct.Config.ConsensusPubKey,
				ValidatorNetAddresses: acct.Config.ValidatorNetAddresses,
				FullnodeNetAddresses:  acct.Config.FullnodeNetAddresses,
			}
		}
		if err := bucket.Save(kv, &va); err != nil {
			return errors.Wrapf(err, "account %d", i)
		}
	}
	return nil
}
