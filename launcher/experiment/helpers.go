package experiment

import (
	"context"
	"io"

	"github.com/clusterlab/slurmlaunch/common/consts"
	"github.com/minio/minio-go/v7"
	"github.com/pelletier/go-toml/v2"
)

func GetExperimentMeta(ctx context.Context, mc *minio.Client, bucket string, experimentID string) (*Experiment, error) {
	obj, err := mc.GetObject(ctx, bucket, experimentID+"/"+consts.ExperimentManifestFile, minio.GetObjectOptions{})
	if err != nil {
		return nil, err
	}
	defer obj.Close()
	eToml, err := io.ReadAll(obj)
	if err != nil {
		return nil, err
	}
	rslt := new(Experiment)
	err = toml.Unmarshal(eToml, rslt)
	if err != nil {
		return nil, err
	}
	if rslt.ID == "" {
		rslt.ID = experimentID
	}
	return rslt, nil
}
